package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/render"
)

var placeholdersDir string

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders",
	Short: "Generate placeholder portraits for characters without art",
	Long: `Write a 512x512 placeholder PNG for every roster character, named by slug
(devil_jin.png), plus default.png. Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runPlaceholders,
}

func init() {
	placeholdersCmd.Flags().StringVar(&placeholdersDir, "dir", "", "output directory (default renders.placeholder_dir)")
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	dir := cfg.Renders.PlaceholderDir
	if placeholdersDir != "" {
		dir = placeholdersDir
	}
	n, err := render.WritePlaceholders(dir, catalog, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d placeholder images to %s\n", n, dir)
	return nil
}
