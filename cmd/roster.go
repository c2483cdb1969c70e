package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/report"
)

var rosterRanks bool

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Show the character roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report.PrintRoster(os.Stdout, catalog)
		if rosterRanks {
			fmt.Fprintf(os.Stdout, "\nRanks:   %s\n", strings.Join(catalog.Ranks(), ", "))
			fmt.Fprintf(os.Stdout, "Regions: %s\n", strings.Join(catalog.Regions(), ", "))
		}
		return nil
	},
}

func init() {
	rosterCmd.Flags().BoolVar(&rosterRanks, "ranks", false, "also list ranks and regions")
}
