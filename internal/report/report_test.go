package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/roster"
)

func TestWilsonCI(t *testing.T) {
	lo, hi := wilsonCI(0, 0)
	if lo != 0 || hi != 1 {
		t.Errorf("empty sample: got [%v, %v], want [0, 1]", lo, hi)
	}

	lo, hi = wilsonCI(50, 100)
	if math.Abs(lo-0.4038) > 0.001 || math.Abs(hi-0.5962) > 0.001 {
		t.Errorf("50/100: got [%.4f, %.4f]", lo, hi)
	}

	lo, hi = wilsonCI(10, 10)
	if hi < 0.999 || lo <= 0.6 {
		t.Errorf("10/10: got [%.4f, %.4f]", lo, hi)
	}
}

func TestPrintCharacterTable(t *testing.T) {
	var buf bytes.Buffer
	PrintCharacterTable(&buf, model.CharacterTable{
		{Character: "Jin", Wins: 1, Matches: 2, Usage: 2, WinRate: 50},
		{Character: "Paul"},
	})
	out := buf.String()
	for _, want := range []string{"CHARACTER", "Jin", "50.0%", "Paul", "0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintMatchupTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintMatchupTable(&buf, nil)
	if !strings.Contains(buf.String(), "No matchups") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestPrintMatchList(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	PrintMatchList(&buf, []model.Match{
		{ID: 7, Timestamp: now.Add(-3 * time.Hour).UnixMilli(), Player1Char: "Jin", Player2Char: "Paul", WinnerChar: "Paul", Player2ID: "bob"},
		{ID: 3, Player1Char: "Nina", Player2Char: "Law", WinnerChar: "Nina"},
	}, now)
	out := buf.String()
	for _, want := range []string{"3 hours ago", "unknown", "Paul (bob)", "Nina"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPlayerStats(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayerStats(&buf, &model.PlayerStats{
		Player:         model.Player{ID: "p1", Name: "Knee", MainChar: "Bryan"},
		TotalMatches:   3,
		Wins:           2,
		Losses:         1,
		CharacterStats: []model.PlayerCharacterStats{{Character: "Bryan", Wins: 2, Matches: 3}},
	}, time.Now())
	out := buf.String()
	for _, want := range []string{"Knee (p1)", "2W - 1L", "66.7%", "Recent matches (0)", "No matches recorded."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRoster(t *testing.T) {
	var buf bytes.Buffer
	PrintRoster(&buf, roster.Default())
	out := buf.String()
	if !strings.Contains(out, "devil_jin") || !strings.Contains(out, "39 characters") {
		t.Errorf("unexpected roster output:\n%s", out)
	}
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, []string{"winner_char", "n"}, [][]string{{"Jin", "3"}, {"NULL", "1"}})
	out := buf.String()
	for _, want := range []string{"WINNER", "Jin", "NULL", "(2 rows)"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintRows(&buf, []string{"id"}, nil)
	if buf.String() != "(no rows)\n" {
		t.Errorf("empty result: %q", buf.String())
	}
}
