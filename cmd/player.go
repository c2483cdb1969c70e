package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/ingest"
	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/report"
	"github.com/pable/tkstats/internal/storage"
)

var (
	playerName   string
	playerMain   string
	playerRank   string
	playerRegion string
)

// playerCmd groups the player registry subcommands.
var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Manage registered players and show their stats",
}

var playerAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Register a player",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlayerAdd,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered players",
	Args:  cobra.NoArgs,
	RunE:  runPlayerList,
}

var playerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a player's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerShow,
}

var playerUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a player's name, main character, rank or region",
	Long:  "Update a registered player. Only the flags given are changed; pass an empty value (--rank \"\") to clear a field.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerUpdate,
}

var playerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a player (their matches are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerDelete,
}

var playerStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Overall record, per-character breakdown and recent matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerStats,
}

func init() {
	for _, c := range []*cobra.Command{playerAddCmd, playerUpdateCmd} {
		c.Flags().StringVar(&playerMain, "main", "", "main character")
		c.Flags().StringVar(&playerRank, "rank", "", "rank")
		c.Flags().StringVar(&playerRegion, "region", "", "region")
	}
	playerUpdateCmd.Flags().StringVar(&playerName, "name", "", "display name")

	playerCmd.AddCommand(playerAddCmd, playerListCmd, playerShowCmd, playerUpdateCmd, playerDeleteCmd, playerStatsCmd)
}

func runPlayerAdd(cmd *cobra.Command, args []string) error {
	p, err := ingest.CanonicalPlayer(model.Player{
		ID:       args[0],
		Name:     args[1],
		MainChar: playerMain,
		Rank:     playerRank,
		Region:   playerRegion,
	}, catalog)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.InsertPlayer(context.Background(), p)
	if errors.Is(err, storage.ErrPlayerExists) {
		return fmt.Errorf("player %q already exists (use 'tkstats player update')", p.ID)
	}
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Registered %s (%s)\n", created.Name, created.ID)
	return nil
}

func runPlayerList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	players, err := db.ListPlayers(context.Background())
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	report.PrintPlayerList(os.Stdout, players)
	return nil
}

func runPlayerShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.GetPlayer(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if p == nil {
		return fmt.Errorf("player %q not found", args[0])
	}
	report.PrintPlayerList(os.Stdout, []model.Player{*p})
	fmt.Fprintf(os.Stdout, "Registered %s\n", p.CreatedAt.Local().Format(time.DateTime))
	return nil
}

func runPlayerUpdate(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	p, err := db.GetPlayer(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if p == nil {
		return fmt.Errorf("player %q not found", args[0])
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = playerName
	}
	if flags.Changed("main") {
		p.MainChar = playerMain
	}
	if flags.Changed("rank") {
		p.Rank = playerRank
	}
	if flags.Changed("region") {
		p.Region = playerRegion
	}
	updated, err := ingest.CanonicalPlayer(*p, catalog)
	if err != nil {
		return err
	}
	if _, err := db.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Updated %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func runPlayerDelete(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := db.DeletePlayer(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if !ok {
		return fmt.Errorf("player %q not found", args[0])
	}
	fmt.Fprintf(os.Stdout, "Deleted player %s\n", args[0])
	return nil
}

func runPlayerStats(cmd *cobra.Command, args []string) error {
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

	stats := newAggregator().PlayerStats(args[0], matches, players)
	if stats == nil {
		return fmt.Errorf("player %q not found", args[0])
	}
	report.PrintPlayerStats(os.Stdout, stats, time.Now())
	return nil
}
