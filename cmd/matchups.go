package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/report"
)

var matchupsCmd = &cobra.Command{
	Use:   "matchups [character]",
	Short: "Head-to-head records between characters",
	Long: `Without an argument, print every recorded pairing with each side's wins
and win rate. With a character, print that character's record against every
opponent (mirror matches excluded).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatchups,
}

func runMatchups(cmd *cobra.Command, args []string) error {
	var character string
	if len(args) == 1 {
		name, ok := catalog.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown character %q (see 'tkstats roster')", args[0])
		}
		character = name
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(context.Background())
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	agg := newAggregator()
	if character != "" {
		opponents, err := agg.CharacterMatchups(character, matches)
		if err != nil {
			return fmt.Errorf("character matchups: %w", err)
		}
		report.PrintCharacterMatchups(os.Stdout, character, playedOpponents(opponents))
		return nil
	}

	stats, err := agg.MatchupStats(matches)
	if err != nil {
		return fmt.Errorf("matchup stats: %w", err)
	}
	report.PrintMatchupTable(os.Stdout, stats)
	return nil
}

// playedOpponents drops opponents never faced.
func playedOpponents(opponents []model.OpponentStats) []model.OpponentStats {
	var played []model.OpponentStats
	for _, o := range opponents {
		if o.Matches > 0 {
			played = append(played, o)
		}
	}
	return played
}
