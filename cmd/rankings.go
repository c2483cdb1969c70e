package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/report"
)

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Rank registered players by win rate",
	Args:  cobra.NoArgs,
	RunE:  runRankings,
}

func runRankings(cmd *cobra.Command, args []string) error {
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
	report.PrintRankings(os.Stdout, newAggregator().Rankings(matches, players))
	return nil
}
