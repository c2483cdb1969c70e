package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/report"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded matches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "show at most n matches (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(context.Background())
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches recorded yet. Run 'tkstats add <p1> <p2> <winner>' to add one.")
		return nil
	}
	total := len(matches)
	if listLimit > 0 && listLimit < total {
		matches = matches[:listLimit]
	}
	report.PrintMatchList(os.Stdout, matches, time.Now())
	fmt.Fprintf(os.Stdout, "\n(%d of %d matches)\n", len(matches), total)
	return nil
}
