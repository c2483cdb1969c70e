package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/roster"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 9, 18, 30, 15, 0, time.UTC).UnixMilli()
	cases := map[string]int64{
		"2024-03-09T18:30:15Z":       want,
		"2024-03-09T18:30:15":        want,
		"2024-03-09T20:30:15+02:00":  want,
		"2024-03-09T18:30:15.250000": want + 250,
		"2024-03-09 18:30:15":        want,
		"1710009015000":              1710009015000,
		"":                           0,
		"2024-03-09":                 time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}
	for in, exp := range cases {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
			continue
		}
		if got != exp {
			t.Errorf("ParseTimestamp(%q) = %d, want %d", in, got, exp)
		}
	}
	for _, in := range []string{"last tuesday", "1969-12-31T23:59:59Z", "-1"} {
		if _, err := ParseTimestamp(in); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ParseTimestamp(%q): expected ErrInvalidTimestamp, got %v", in, err)
		}
	}
}

func TestMatchFromJSON_FieldPrecedence(t *testing.T) {
	got, err := DecodeMatches([]byte(`[
		{"player1": "Jin", "player2": "Paul", "winner": "Jin", "timestamp": "", "date": "2024-01-02"},
		{"player1": "Jin", "player2": "Paul", "winner": "Jin", "timestamp": null, "date": 42},
		{"player1_char": "", "player1": "Jin", "player2": "Paul", "winner": "Paul"}
	]`))
	if err != nil {
		t.Fatalf("DecodeMatches: %v", err)
	}
	if want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli(); got[0].Timestamp != want {
		t.Errorf("blank timestamp should fall back to date: got %d, want %d", got[0].Timestamp, want)
	}
	if got[1].Timestamp != 42 {
		t.Errorf("null timestamp should fall back to date: got %d", got[1].Timestamp)
	}
	if got[2].Player1Char != "" {
		t.Errorf("present but empty player1_char must win over player1, got %q", got[2].Player1Char)
	}
	if _, err := CanonicalMatch(got[2], roster.Default()); !errors.Is(err, ErrInvalidMatch) {
		t.Errorf("expected ErrInvalidMatch for empty player1_char, got %v", err)
	}

	_, err = DecodeMatches([]byte(`[{"player1": "Jin", "player2": "Paul", "winner": "Jin", "timestamp": -5}]`))
	if !errors.Is(err, ErrInvalidTimestamp) || !errors.Is(err, ErrInvalidMatch) {
		t.Errorf("negative numeric timestamp: got %v", err)
	}
}

func TestDecodeMatches_LegacyAndCurrent(t *testing.T) {
	data := []byte(`[
		{"id": 1699999999000, "player1": "Jin", "player2": "Paul", "winner": "Jin"},
		{"id": 0, "player1": "alice", "player2": "bob", "winner": "alice",
		 "player1_char": "Lili", "player2_char": "Bob", "winner_char": "Bob",
		 "player1_id": "alice", "player2_id": "bob", "winner_id": "bob",
		 "timestamp": "2024-01-02T03:04:05"},
		{"player1": "Nina", "player2": "Law", "winner": "Law", "date": 1700000000123},
		{"player1_char": "Kuma", "player1": "Panda", "player2": "King", "winner": "King", "winner_char": null}
	]`)
	got, err := DecodeMatches(data)
	if err != nil {
		t.Fatalf("DecodeMatches: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(got))
	}

	if got[0].Player1Char != "Jin" || got[0].Player2Char != "Paul" || got[0].WinnerChar != "Jin" {
		t.Errorf("legacy record: %+v", got[0])
	}
	if got[0].ID != 0 || got[0].Timestamp != 0 {
		t.Errorf("legacy id/timestamp should be dropped/unknown: %+v", got[0])
	}

	want1 := model.Match{
		Timestamp:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(),
		Player1Char: "Lili", Player2Char: "Bob", WinnerChar: "Bob",
		Player1ID: "alice", Player2ID: "bob", WinnerID: "bob",
	}
	if got[1] != want1 {
		t.Errorf("current record:\n got %+v\nwant %+v", got[1], want1)
	}

	if got[2].Timestamp != 1700000000123 {
		t.Errorf("date fallback: %+v", got[2])
	}

	if got[3].Player1Char != "Kuma" || got[3].WinnerChar != "King" {
		t.Errorf("_char precedence / null fallback: %+v", got[3])
	}
}

func TestDecodeMatches_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":     `[{"player1": "Jin"`,
		"not array":     `{"player1": "Jin"}`,
		"not object":    `[1, 2]`,
		"bad timestamp": `[{"player1": "Jin", "player2": "Paul", "winner": "Jin", "timestamp": "soon"}]`,
	}
	for name, in := range cases {
		if _, err := DecodeMatches([]byte(in)); !errors.Is(err, ErrInvalidMatch) {
			t.Errorf("%s: expected ErrInvalidMatch, got %v", name, err)
		}
	}
}

func TestDecodePlayers(t *testing.T) {
	got, err := DecodePlayers([]byte(`[
		{"id": "p1", "name": "Arslan", "main_char": "Geese", "rank": "Tekken God", "region": "Asia"},
		{"id": "p2", "name": "Knee"}
	]`))
	if err != nil {
		t.Fatalf("DecodePlayers: %v", err)
	}
	if len(got) != 2 || got[0].MainChar != "Geese" || got[1].Rank != "" {
		t.Errorf("unexpected players %+v", got)
	}
	if _, err := DecodePlayers([]byte(`"nope"`)); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer, got %v", err)
	}
}

func TestValidateMatch(t *testing.T) {
	cat := roster.Default()
	ok := model.Match{Player1Char: "Jin", Player2Char: "Paul", WinnerChar: "Paul"}
	if err := ValidateMatch(ok, cat); err != nil {
		t.Errorf("valid match rejected: %v", err)
	}

	bad := []model.Match{
		{Player2Char: "Paul", WinnerChar: "Paul"},
		{Player1Char: "Jin", WinnerChar: "Jin"},
		{Player1Char: "Jin", Player2Char: "Paul"},
		{Player1Char: "Jin", Player2Char: "Paul", WinnerChar: "Kazuya"},
		{Player1Char: "Jin", Player2Char: "Reina", WinnerChar: "Jin"},
		{Player1Char: "Jin", Player2Char: "Paul", WinnerChar: "Jin", Player1ID: "a", Player2ID: "b", WinnerID: "c"},
	}
	for i, m := range bad {
		if err := ValidateMatch(m, cat); !errors.Is(err, ErrInvalidMatch) {
			t.Errorf("case %d: expected ErrInvalidMatch, got %v", i, err)
		}
	}
}

func TestCanonicalMatch(t *testing.T) {
	m, err := CanonicalMatch(model.Match{Player1Char: "devil_jin", Player2Char: "jack-7", WinnerChar: "DEVIL JIN"}, roster.Default())
	if err != nil {
		t.Fatalf("CanonicalMatch: %v", err)
	}
	if m.Player1Char != "Devil Jin" || m.Player2Char != "Jack-7" || m.WinnerChar != "Devil Jin" {
		t.Errorf("unexpected canonical names %+v", m)
	}
}

func TestValidatePlayer(t *testing.T) {
	cat := roster.Default()
	if err := ValidatePlayer(model.Player{ID: "x", Name: "X"}, cat); err != nil {
		t.Errorf("minimal player rejected: %v", err)
	}
	bad := []model.Player{
		{Name: "X"},
		{ID: "x"},
		{ID: "x", Name: "X", MainChar: "Ryu"},
		{ID: "x", Name: "X", Rank: "Platinum"},
		{ID: "x", Name: "X", Region: "Moon"},
	}
	for i, p := range bad {
		if err := ValidatePlayer(p, cat); !errors.Is(err, ErrInvalidPlayer) {
			t.Errorf("case %d: expected ErrInvalidPlayer, got %v", i, err)
		}
	}
	p, err := CanonicalPlayer(model.Player{ID: "x", Name: "X", MainChar: "lucky_chloe"}, cat)
	if err != nil || p.MainChar != "Lucky Chloe" {
		t.Errorf("CanonicalPlayer: %+v, %v", p, err)
	}
}
