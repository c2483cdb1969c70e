package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/ingest"
	"github.com/pable/tkstats/internal/model"
)

var (
	addP1ID     string
	addP2ID     string
	addWinnerID string
	addTime     string
)

var addCmd = &cobra.Command{
	Use:   "add <player1-character> <player2-character> <winner-character>",
	Short: "Record a match result",
	Long: `Record one match. Character names may be written loosely ("devil_jin",
"jack-7"); the winner must be one of the two characters.

Attach registered players with --p1/--p2 and name the winning player with
--winner-id. Without --time the current time is used.`,
	Example: `  tkstats add Jin Paul Jin
  tkstats add Lili Asuka Asuka --p1 alice --p2 bob --winner-id bob`,
	Args: cobra.ExactArgs(3),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addP1ID, "p1", "", "player id on the player1 side")
	addCmd.Flags().StringVar(&addP2ID, "p2", "", "player id on the player2 side")
	addCmd.Flags().StringVar(&addWinnerID, "winner-id", "", "id of the winning player")
	addCmd.Flags().StringVar(&addTime, "time", "", "match time (ISO-8601 or epoch milliseconds)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ts, err := ingest.ParseTimestamp(addTime)
	if err != nil {
		return err
	}
	m, err := ingest.CanonicalMatch(model.Match{
		Timestamp:   ts,
		Player1Char: args[0],
		Player2Char: args[1],
		WinnerChar:  args[2],
		Player1ID:   addP1ID,
		Player2ID:   addP2ID,
		WinnerID:    addWinnerID,
	}, catalog)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	for _, id := range []string{m.Player1ID, m.Player2ID} {
		if id == "" {
			continue
		}
		p, err := db.GetPlayer(ctx, id)
		if err != nil {
			return fmt.Errorf("look up player %s: %w", id, err)
		}
		if p == nil {
			log.Warn().Str("player_id", id).Msg("player is not registered")
		}
	}

	id, err := db.InsertMatch(ctx, m)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Recorded match #%d: %s vs %s, winner %s\n", id, m.Player1Char, m.Player2Char, m.WinnerChar)
	return nil
}
