package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearForce bool

// clearCmd deletes every recorded match. Players are kept.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded matches",
	Long:  "Permanently delete every recorded match. Registered players are kept.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete all matches in: %s\n", cfg.Database.Path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.ClearMatches(context.Background())
	if err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(os.Stdout, "No matches recorded, nothing to clear.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted %d matches\n", n)
	return nil
}
