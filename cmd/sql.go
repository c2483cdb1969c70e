package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/report"
	"github.com/pable/tkstats/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query | view>",
	Short: "Query the match database directly",
	Long: fmt.Sprintf(`Run a SQL query against the match database and print the result as a table.

Instead of SQL text, give the name of a built-in view: %s.
  matches     every match, newest first, with a readable date
  players     registered players with matches played and won
  characters  times each character was picked and won

Tables:
  matches(id, timestamp, player1_char, player2_char, winner_char,
    player1_id, player2_id, winner_id, created_at)
  players(id, name, main_char, rank, region, created_at)

timestamp and created_at are epoch milliseconds (0 = unknown):
  tkstats sql "SELECT datetime(timestamp / 1000, 'unixepoch'), winner_char FROM matches"`,
		strings.Join(storage.ViewNames(), ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	query := strings.Join(args, " ")
	log.Debug().Str("query", storage.ResolveQuery(query)).Msg("running query")
	cols, rows, err := db.QueryRaw(context.Background(), query)
	if err != nil {
		return err
	}
	report.PrintRows(os.Stdout, cols, rows)
	return nil
}
