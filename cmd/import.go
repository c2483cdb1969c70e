package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/ingest"
	"github.com/pable/tkstats/internal/storage"
)

var importPlayersPath string

var importCmd = &cobra.Command{
	Use:   "import <matches.json>",
	Short: "Import matches (and optionally players) from a JSON export",
	Long: `Import a JSON array of matches. Both the current layout
(player1_char/player2_char/winner_char, player ids, timestamp) and the legacy
layout (player1/player2/winner, date) are accepted. Ids in the file are
ignored; the database assigns new ones.

Every record is validated against the roster before anything is written;
the import is all-or-nothing.

With --players, a JSON array of players is registered first. Players whose
id already exists are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPlayersPath, "players", "", "JSON file with players to register")
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && importPlayersPath == "" {
		return errors.New("nothing to import: give a matches file and/or --players")
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	if importPlayersPath != "" {
		if err := importPlayers(ctx, db, importPlayersPath); err != nil {
			return err
		}
	}
	if len(args) == 0 {
		return nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	matches, err := ingest.DecodeMatches(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	for i := range matches {
		if matches[i], err = ingest.CanonicalMatch(matches[i], catalog); err != nil {
			return fmt.Errorf("%s: record %d: %w", args[0], i, err)
		}
	}
	n, err := db.InsertMatches(ctx, matches)
	if err != nil {
		return fmt.Errorf("import matches: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Imported %d matches from %s\n", n, args[0])
	return nil
}

func importPlayers(ctx context.Context, db *storage.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	players, err := ingest.DecodePlayers(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	added, skipped := 0, 0
	for i, raw := range players {
		p, err := ingest.CanonicalPlayer(raw, catalog)
		if err != nil {
			return fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		if _, err := db.InsertPlayer(ctx, p); err != nil {
			if errors.Is(err, storage.ErrPlayerExists) {
				log.Debug().Str("player_id", p.ID).Msg("player exists, skipping")
				skipped++
				continue
			}
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
		added++
	}
	fmt.Fprintf(os.Stdout, "Registered %d players from %s (%d already present)\n", added, path, skipped)
	return nil
}
