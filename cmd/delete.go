package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <match-id>",
	Short: "Delete one recorded match",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := db.DeleteMatch(context.Background(), id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !ok {
		return fmt.Errorf("match #%d not found", id)
	}
	fmt.Fprintf(os.Stdout, "Deleted match #%d\n", id)
	return nil
}
