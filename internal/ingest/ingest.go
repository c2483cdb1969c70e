// Package ingest turns externally supplied match and player records into
// canonical model values. Legacy JSON exports name the characters
// "player1"/"player2"/"winner" and the time "date"; newer ones add "_char"
// fields, player ids and an ISO-8601 or epoch-millisecond "timestamp".
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pable/tkstats/internal/model"
)

var (
	// ErrInvalidMatch wraps every match validation failure.
	ErrInvalidMatch = errors.New("invalid match")
	// ErrInvalidPlayer wraps every player validation failure.
	ErrInvalidPlayer = errors.New("invalid player")
	// ErrInvalidTimestamp is returned for unparseable timestamps.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// isoLayouts are tried in order for string timestamps without an explicit
// zone offset handled by time.RFC3339Nano.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalises a timestamp to epoch milliseconds. It accepts
// ISO-8601 strings (zone-less values are read as UTC) and integer strings,
// which are taken as epoch milliseconds. An empty string yields 0, the
// unknown timestamp. Instants before 1970 are rejected.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checkEpoch(ms, s)
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checkEpoch(t.UnixMilli(), s)
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func checkEpoch(ms int64, raw string) (int64, error) {
	if ms < 0 {
		return 0, fmt.Errorf("%w: %q is before 1970", ErrInvalidTimestamp, raw)
	}
	return ms, nil
}

// firstString returns the trimmed value of the first named field that is
// present and not null. A present but empty field wins over later ones.
func firstString(r gjson.Result, fields ...string) string {
	for _, f := range fields {
		if v := r.Get(f); v.Exists() && v.Type != gjson.Null {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// timestampOf reads "timestamp", then "date". Numbers are epoch ms. A null
// or blank "timestamp" counts as absent and falls through to "date".
func timestampOf(r gjson.Result) (int64, error) {
	for _, f := range []string{"timestamp", "date"} {
		v := r.Get(f)
		switch v.Type {
		case gjson.Number:
			return checkEpoch(v.Int(), v.Raw)
		case gjson.String:
			if strings.TrimSpace(v.String()) != "" {
				return ParseTimestamp(v.String())
			}
		}
	}
	return 0, nil
}

// MatchFromJSON normalises one JSON object to a canonical match. The
// "_char" fields win over the bare legacy names. Any id in the record is
// dropped: the store assigns identifiers.
func MatchFromJSON(r gjson.Result) (model.Match, error) {
	if !r.IsObject() {
		return model.Match{}, fmt.Errorf("%w: expected object, got %s", ErrInvalidMatch, r.Type)
	}
	ts, err := timestampOf(r)
	if err != nil {
		return model.Match{}, fmt.Errorf("%w: %w", ErrInvalidMatch, err)
	}
	m := model.Match{
		Timestamp:   ts,
		Player1Char: firstString(r, "player1_char", "player1"),
		Player2Char: firstString(r, "player2_char", "player2"),
		WinnerChar:  firstString(r, "winner_char", "winner"),
		Player1ID:   firstString(r, "player1_id"),
		Player2ID:   firstString(r, "player2_id"),
		WinnerID:    firstString(r, "winner_id"),
	}
	return m, nil
}

// DecodeMatches parses a JSON array of match objects. It stops at the first
// malformed record and reports its position.
func DecodeMatches(data []byte) ([]model.Match, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidMatch)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of matches", ErrInvalidMatch)
	}
	var out []model.Match
	var ferr error
	root.ForEach(func(key, value gjson.Result) bool {
		m, err := MatchFromJSON(value)
		if err != nil {
			ferr = fmt.Errorf("record %d: %w", key.Int(), err)
			return false
		}
		out = append(out, m)
		return true
	})
	return out, ferr
}

// PlayerFromJSON normalises one JSON player object.
func PlayerFromJSON(r gjson.Result) (model.Player, error) {
	if !r.IsObject() {
		return model.Player{}, fmt.Errorf("%w: expected object, got %s", ErrInvalidPlayer, r.Type)
	}
	return model.Player{
		ID:       firstString(r, "id"),
		Name:     firstString(r, "name"),
		MainChar: firstString(r, "main_char", "mainChar"),
		Rank:     firstString(r, "rank"),
		Region:   firstString(r, "region"),
	}, nil
}

// DecodePlayers parses a JSON array of player objects.
func DecodePlayers(data []byte) ([]model.Player, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidPlayer)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of players", ErrInvalidPlayer)
	}
	var out []model.Player
	var ferr error
	root.ForEach(func(key, value gjson.Result) bool {
		p, err := PlayerFromJSON(value)
		if err != nil {
			ferr = fmt.Errorf("record %d: %w", key.Int(), err)
			return false
		}
		out = append(out, p)
		return true
	})
	return out, ferr
}
