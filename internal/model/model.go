package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecentMatchLimit caps PlayerStats.RecentMatches.
const RecentMatchLimit = 20

// ---- Stored records ----

// Match is one recorded game between two character selections.
// Timestamp is epoch milliseconds; zero means unknown and sorts oldest.
// The *ID fields reference registered players and may be empty.
type Match struct {
	ID          int64  `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Player1Char string `json:"player1_char"`
	Player2Char string `json:"player2_char"`
	WinnerChar  string `json:"winner_char"`
	Player1ID   string `json:"player1_id,omitempty"`
	Player2ID   string `json:"player2_id,omitempty"`
	WinnerID    string `json:"winner_id,omitempty"`
}

// Time returns the match timestamp as a time.Time, or the zero time if
// unknown (zero or negative).
func (m *Match) Time() time.Time {
	if m.Timestamp <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Timestamp)
}

// Involves reports whether playerID occupied either side of the match.
func (m *Match) Involves(playerID string) bool {
	return playerID != "" && (m.Player1ID == playerID || m.Player2ID == playerID)
}

// Player is a registered participant.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MainChar  string    `json:"main_char"`
	Rank      string    `json:"rank"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

// ---- Derived views ----

// CharacterStats is the per-character fold over a match list.
// Usage always equals Matches; both are kept because API consumers read usage.
type CharacterStats struct {
	Character string
	Wins      int
	Matches   int
	Usage     int
	WinRate   float64 // percent, 0 when Matches == 0
}

// WinRateLabel formats WinRate for display.
func (s *CharacterStats) WinRateLabel() string {
	return FormatWinRate(s.Wins, s.Matches)
}

// Losses returns Matches - Wins.
func (s *CharacterStats) Losses() int {
	return s.Matches - s.Wins
}

func (s CharacterStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Character    string  `json:"character"`
		Wins         int     `json:"wins"`
		Matches      int     `json:"matches"`
		Usage        int     `json:"usage"`
		WinRate      string  `json:"winRate"`
		WinRateValue float64 `json:"win_rate"`
	}{s.Character, s.Wins, s.Matches, s.Usage, s.WinRateLabel(), s.WinRate})
}

// CharacterTable is an ordered list of CharacterStats.
type CharacterTable []CharacterStats

// Get returns the row for character.
func (t CharacterTable) Get(character string) (CharacterStats, bool) {
	for _, s := range t {
		if s.Character == character {
			return s, true
		}
	}
	return CharacterStats{}, false
}

// Names returns the characters in table order.
func (t CharacterTable) Names() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.Character
	}
	return out
}

// MatchupKey identifies an unordered character pair. Char1 <= Char2.
type MatchupKey struct {
	Char1, Char2 string
}

// NewMatchupKey canonicalises a pair so that "A vs B" and "B vs A" collide.
func NewMatchupKey(a, b string) MatchupKey {
	if b < a {
		a, b = b, a
	}
	return MatchupKey{Char1: a, Char2: b}
}

func (k MatchupKey) String() string {
	return k.Char1 + " vs " + k.Char2
}

// MatchupStats is the head-to-head record for one character pair.
type MatchupStats struct {
	MatchupKey
	Char1Wins int
	Char2Wins int
	Total     int
}

// Char1WinRate returns Char1's win percentage.
func (s *MatchupStats) Char1WinRate() float64 { return WinRate(s.Char1Wins, s.Total) }

// Char2WinRate returns Char2's win percentage.
func (s *MatchupStats) Char2WinRate() float64 { return WinRate(s.Char2Wins, s.Total) }

func (s MatchupStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key          string `json:"matchup"`
		Char1        string `json:"char1"`
		Char2        string `json:"char2"`
		Char1Wins    int    `json:"char1_wins"`
		Char2Wins    int    `json:"char2_wins"`
		Total        int    `json:"total"`
		Char1WinRate string `json:"char1_winrate"`
		Char2WinRate string `json:"char2_winrate"`
	}{
		s.String(), s.Char1, s.Char2, s.Char1Wins, s.Char2Wins, s.Total,
		FormatWinRate(s.Char1Wins, s.Total), FormatWinRate(s.Char2Wins, s.Total),
	})
}

// MatchupTable is a list of matchups sorted by key.
type MatchupTable []MatchupStats

// Get returns the matchup for a pair in either order.
func (t MatchupTable) Get(a, b string) (MatchupStats, bool) {
	k := NewMatchupKey(a, b)
	for _, s := range t {
		if s.MatchupKey == k {
			return s, true
		}
	}
	return MatchupStats{}, false
}

// OpponentStats is one character's record against a single opponent.
type OpponentStats struct {
	Opponent string `json:"opponent"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Matches  int    `json:"matches"`
}

// WinRateLabel formats the win rate against this opponent.
func (s *OpponentStats) WinRateLabel() string { return FormatWinRate(s.Wins, s.Matches) }

func (s OpponentStats) MarshalJSON() ([]byte, error) {
	type plain OpponentStats
	return json.Marshal(struct {
		plain
		WinRateText string `json:"winrate"`
	}{plain(s), s.WinRateLabel()})
}

// PlayerCharacterStats is a player's record on one character.
type PlayerCharacterStats struct {
	Character string `json:"character"`
	Wins      int    `json:"wins"`
	Matches   int    `json:"matches"`
}

// WinRateLabel formats the player's win rate on this character.
func (s *PlayerCharacterStats) WinRateLabel() string { return FormatWinRate(s.Wins, s.Matches) }

// PlayerStats summarises one registered player's matches.
type PlayerStats struct {
	Player         Player                 `json:"player"`
	TotalMatches   int                    `json:"total_matches"`
	Wins           int                    `json:"wins"`
	Losses         int                    `json:"losses"`
	WinRate        float64                `json:"win_rate"`
	CharacterStats []PlayerCharacterStats `json:"character_stats"`
	RecentMatches  []Match                `json:"recent_matches"`
}

// WinRateLabel formats the overall win rate.
func (s *PlayerStats) WinRateLabel() string { return FormatWinRate(s.Wins, s.TotalMatches) }

func (s PlayerStats) MarshalJSON() ([]byte, error) {
	type plain PlayerStats
	return json.Marshal(struct {
		plain
		WinRateText string `json:"winrate"`
	}{plain(s), s.WinRateLabel()})
}

// PlayerStanding is one row of the player ranking.
type PlayerStanding struct {
	Player  Player  `json:"player"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"win_rate"`
}

// WinRateLabel formats the standing's win rate.
func (s *PlayerStanding) WinRateLabel() string { return FormatWinRate(s.Wins, s.Matches) }

func (s PlayerStanding) MarshalJSON() ([]byte, error) {
	type plain PlayerStanding
	return json.Marshal(struct {
		plain
		WinRateText string `json:"winrate"`
	}{plain(s), s.WinRateLabel()})
}

// ---- Win-rate helpers ----

// WinRate returns wins/matches as a percentage, or 0 when matches is 0.
func WinRate(wins, matches int) float64 {
	if matches == 0 {
		return 0
	}
	return float64(wins) / float64(matches) * 100
}

// FormatWinRate renders a win rate with one decimal and a percent sign.
// A record with no matches renders as "0%".
func FormatWinRate(wins, matches int) string {
	if matches == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", WinRate(wins, matches))
}
