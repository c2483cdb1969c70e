package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/roster"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintSummary prints a one-line header with match and player counts.
func PrintSummary(w io.Writer, matches, players int) {
	fmt.Fprintf(w, "\nMatches: %s  |  Players: %s\n\n",
		humanize.Comma(int64(matches)), humanize.Comma(int64(players)))
}

// PrintCharacterTable prints per-character wins, losses and win rate with a
// 95% Wilson interval. Rows keep the order of the table passed in.
func PrintCharacterTable(w io.Writer, stats model.CharacterTable) {
	table := newTable(w)
	table.Header("#", "CHARACTER", "W", "L", "MATCHES", "WIN%", "95% CI")

	for i, s := range stats {
		table.Append(
			strconv.Itoa(i+1),
			s.Character,
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses()),
			strconv.Itoa(s.Matches),
			s.WinRateLabel(),
			ciLabel(s.Wins, s.Matches),
		)
	}
	table.Render()
}

// PrintMatchupTable prints head-to-head records, one row per pairing.
func PrintMatchupTable(w io.Writer, stats model.MatchupTable) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No matchups recorded.")
		return
	}
	table := newTable(w)
	table.Header("CHAR1", "CHAR2", "C1_W", "C2_W", "TOTAL", "C1_WIN%", "C2_WIN%")

	for _, s := range stats {
		table.Append(
			s.Char1,
			s.Char2,
			strconv.Itoa(s.Char1Wins),
			strconv.Itoa(s.Char2Wins),
			strconv.Itoa(s.Total),
			model.FormatWinRate(s.Char1Wins, s.Total),
			model.FormatWinRate(s.Char2Wins, s.Total),
		)
	}
	table.Render()
}

// PrintCharacterMatchups prints one character's record against each opponent.
func PrintCharacterMatchups(w io.Writer, character string, opponents []model.OpponentStats) {
	fmt.Fprintf(w, "\nMatchups for %s\n\n", character)
	if len(opponents) == 0 {
		fmt.Fprintln(w, "No matches against other characters.")
		return
	}
	table := newTable(w)
	table.Header("OPPONENT", "W", "L", "MATCHES", "WIN%", "95% CI")
	for _, o := range opponents {
		table.Append(
			o.Opponent,
			strconv.Itoa(o.Wins),
			strconv.Itoa(o.Losses),
			strconv.Itoa(o.Matches),
			o.WinRateLabel(),
			ciLabel(o.Wins, o.Matches),
		)
	}
	table.Render()
}

// PrintMatchList prints stored matches. Times are shown relative to now.
func PrintMatchList(w io.Writer, matches []model.Match, now time.Time) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches recorded.")
		return
	}
	table := newTable(w)
	table.Header("ID", "WHEN", "PLAYER 1", "PLAYER 2", "WINNER")
	for _, m := range matches {
		table.Append(
			strconv.FormatInt(m.ID, 10),
			whenLabel(m, now),
			sideLabel(m.Player1Char, m.Player1ID),
			sideLabel(m.Player2Char, m.Player2ID),
			sideLabel(m.WinnerChar, m.WinnerID),
		)
	}
	table.Render()
}

// PrintPlayerList prints registered players.
func PrintPlayerList(w io.Writer, players []model.Player) {
	if len(players) == 0 {
		fmt.Fprintln(w, "No players registered.")
		return
	}
	table := newTable(w)
	table.Header("ID", "NAME", "MAIN", "RANK", "REGION")
	for _, p := range players {
		table.Append(p.ID, p.Name, dash(p.MainChar), dash(p.Rank), dash(p.Region))
	}
	table.Render()
}

// PrintPlayerStats prints a player's overall record, the per-character
// breakdown and their most recent matches.
func PrintPlayerStats(w io.Writer, s *model.PlayerStats, now time.Time) {
	p := s.Player
	fmt.Fprintf(w, "\nPlayer: %s (%s)  |  Main: %s  |  Rank: %s  |  Region: %s\n",
		p.Name, p.ID, dash(p.MainChar), dash(p.Rank), dash(p.Region))
	fmt.Fprintf(w, "Record: %dW - %dL  |  Matches: %d  |  Win rate: %s\n\n",
		s.Wins, s.Losses, s.TotalMatches, s.WinRateLabel())

	if len(s.CharacterStats) > 0 {
		table := newTable(w)
		table.Header("CHARACTER", "W", "MATCHES", "WIN%")
		for _, c := range s.CharacterStats {
			table.Append(c.Character, strconv.Itoa(c.Wins), strconv.Itoa(c.Matches), c.WinRateLabel())
		}
		table.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Recent matches (%d):\n", len(s.RecentMatches))
	PrintMatchList(w, s.RecentMatches, now)
}

// PrintRankings prints the player ranking table.
func PrintRankings(w io.Writer, standings []model.PlayerStanding) {
	if len(standings) == 0 {
		fmt.Fprintln(w, "No players registered.")
		return
	}
	table := newTable(w)
	table.Header("#", "PLAYER", "W", "L", "MATCHES", "WIN%", "95% CI")
	for i, s := range standings {
		table.Append(
			strconv.Itoa(i+1),
			s.Player.Name,
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Matches),
			s.WinRateLabel(),
			ciLabel(s.Wins, s.Matches),
		)
	}
	table.Render()
}

// PrintRoster prints the character catalog with the slug used for renders.
func PrintRoster(w io.Writer, cat *roster.Catalog) {
	table := newTable(w)
	table.Header("#", "CHARACTER", "SLUG")
	for i, name := range cat.Characters() {
		table.Append(strconv.Itoa(i+1), name, roster.Slug(name))
	}
	table.Render()
	fmt.Fprintf(w, "\n%d characters, %d ranks, %d regions\n", cat.Len(), len(cat.Ranks()), len(cat.Regions()))
}

// PrintRows prints query results as a table followed by a row count.
func PrintRows(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%s rows)\n", humanize.Comma(int64(len(rows))))
}

func whenLabel(m model.Match, now time.Time) string {
	if m.Timestamp <= 0 {
		return "unknown"
	}
	return humanize.RelTime(m.Time(), now, "ago", "from now")
}

func sideLabel(character, playerID string) string {
	if playerID == "" {
		return character
	}
	return fmt.Sprintf("%s (%s)", character, playerID)
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func ciLabel(wins, n int) string {
	if n == 0 {
		return "—"
	}
	lo, hi := wilsonCI(wins, n)
	return fmt.Sprintf("%.0f–%.0f%%", lo*100, hi*100)
}

// wilsonCI returns the 95% Wilson score interval for a binomial proportion.
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
