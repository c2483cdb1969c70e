package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/report"
	"github.com/pable/tkstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent read-only session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("tkstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("tkstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			n := 20
			if len(args) > 0 {
				if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
					n = v
				}
			}
			shellList(db, n)
		case "stats":
			shellStats(db, len(args) > 0 && args[0] == "--used")
		case "matchups":
			shellMatchups(db, strings.Join(args, " "))
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <id>")
				continue
			}
			shellPlayer(db, args[0])
		case "rankings":
			shellRankings(db)
		case "roster":
			report.PrintRoster(os.Stdout, catalog)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [n]", "most recent matches (default 20)"},
		{"stats [--used]", "per-character win rates"},
		{"matchups [character]", "head-to-head records"},
		{"player <id>", "one player's record and recent matches"},
		{"rankings", "players ranked by win rate"},
		{"roster", "the character roster"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-26s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// shellLoad reads matches and players, printing any error.
func shellLoad(db *storage.DB) ([]model.Match, []model.Player, bool) {
	ctx := context.Background()
	matches, err := db.ListMatches(ctx)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, false
	}
	players, err := db.ListPlayers(ctx)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, false
	}
	return matches, players, true
}

func shellList(db *storage.DB, n int) {
	matches, _, ok := shellLoad(db)
	if !ok {
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches recorded yet.")
		return
	}
	report.PrintMatchList(os.Stdout, firstN(matches, n), time.Now())
}

func firstN(matches []model.Match, n int) []model.Match {
	if n < len(matches) {
		return matches[:n]
	}
	return matches
}

func shellStats(db *storage.DB, used bool) {
	matches, players, ok := shellLoad(db)
	if !ok {
		return
	}
	agg := newAggregator()
	var stats model.CharacterTable
	var err error
	if used {
		stats, err = agg.UsedCharacterStats(matches)
	} else {
		stats, err = agg.CharacterStats(matches)
	}
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintSummary(os.Stdout, len(matches), len(players))
	report.PrintCharacterTable(os.Stdout, stats)
}

func shellMatchups(db *storage.DB, character string) {
	matches, _, ok := shellLoad(db)
	if !ok {
		return
	}
	agg := newAggregator()
	if character == "" {
		stats, err := agg.MatchupStats(matches)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		report.PrintMatchupTable(os.Stdout, stats)
		return
	}
	name, found := catalog.Lookup(character)
	if !found {
		cError.Fprintf(os.Stderr, "unknown character %q\n", character)
		return
	}
	opponents, err := agg.CharacterMatchups(name, matches)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintCharacterMatchups(os.Stdout, name, playedOpponents(opponents))
}

func shellPlayer(db *storage.DB, id string) {
	matches, players, ok := shellLoad(db)
	if !ok {
		return
	}
	stats := newAggregator().PlayerStats(id, matches, players)
	if stats == nil {
		cError.Fprintf(os.Stderr, "no player with id %q\n", id)
		return
	}
	report.PrintPlayerStats(os.Stdout, stats, time.Now())
}

func shellRankings(db *storage.DB) {
	matches, players, ok := shellLoad(db)
	if !ok {
		return
	}
	report.PrintRankings(os.Stdout, newAggregator().Rankings(matches, players))
}
