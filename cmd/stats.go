package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/report"
)

var statsUsed bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-character wins, matches and win rate",
	Long: `Print one row per roster character in roster order, including characters
that have never been played. With --used only characters with at least one
match are shown, best win rate first.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var usedCmd = &cobra.Command{
	Use:   "used",
	Short: "List characters that appear in at least one match",
	Args:  cobra.NoArgs,
	RunE:  runUsed,
}

func init() {
	statsCmd.Flags().BoolVar(&statsUsed, "used", false, "only characters with at least one match, sorted by win rate")
}

func runStats(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	matches, err := db.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	players, err := db.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}

	agg := newAggregator()
	var stats model.CharacterTable
	if statsUsed {
		stats, err = agg.UsedCharacterStats(matches)
	} else {
		stats, err = agg.CharacterStats(matches)
	}
	if err != nil {
		return fmt.Errorf("character stats: %w", err)
	}

	report.PrintSummary(os.Stdout, len(matches), len(players))
	if len(stats) == 0 {
		fmt.Fprintln(os.Stdout, "No characters have been played yet.")
		return nil
	}
	report.PrintCharacterTable(os.Stdout, stats)
	return nil
}

func runUsed(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(context.Background())
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	names := newAggregator().UsedCharacters(matches)
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "No characters have been played yet.")
		return nil
	}
	fmt.Fprintln(os.Stdout, strings.Join(names, "\n"))
	return nil
}
