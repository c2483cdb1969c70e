// Package aggregator folds match records into derived statistics views. Every
// function is pure: the result depends only on the arguments and is freshly
// allocated on each call.
package aggregator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/roster"
)

// ErrUnknownCharacter is matched by errors.Is for any UnknownCharacterError.
var ErrUnknownCharacter = errors.New("unknown character")

// UnknownCharacterError reports a match that names a character outside the catalog.
type UnknownCharacterError struct {
	Name    string
	MatchID int64
}

func (e *UnknownCharacterError) Error() string {
	return fmt.Sprintf("match %d: unknown character %q", e.MatchID, e.Name)
}

func (e *UnknownCharacterError) Is(target error) bool {
	return target == ErrUnknownCharacter
}

// ErrWinnerNotParticipant is returned for a match whose winner is neither side.
var ErrWinnerNotParticipant = errors.New("winner did not play")

// checkWinner reports a match whose winner character took neither side.
func checkWinner(m model.Match) error {
	if m.WinnerChar != m.Player1Char && m.WinnerChar != m.Player2Char {
		return fmt.Errorf("match %d: %w: %q (%s vs %s)", m.ID, ErrWinnerNotParticipant, m.WinnerChar, m.Player1Char, m.Player2Char)
	}
	return nil
}

// Aggregator computes statistics over the characters of one catalog.
type Aggregator struct {
	catalog *roster.Catalog
}

// New returns an Aggregator indexed by cat.
func New(cat *roster.Catalog) *Aggregator {
	return &Aggregator{catalog: cat}
}

// slot returns the catalog index for name or an UnknownCharacterError.
func (a *Aggregator) slot(name string, matchID int64) (int, error) {
	i, ok := a.catalog.Index(name)
	if !ok {
		return 0, &UnknownCharacterError{Name: name, MatchID: matchID}
	}
	return i, nil
}

// CharacterStats returns one row per catalog character, in catalog order,
// including characters with no matches. Each match adds a match and a usage
// to both participants and a win to the winner.
func (a *Aggregator) CharacterStats(matches []model.Match) (model.CharacterTable, error) {
	names := a.catalog.Characters()
	table := make(model.CharacterTable, len(names))
	for i, name := range names {
		table[i] = model.CharacterStats{Character: name}
	}

	for _, m := range matches {
		p1, err := a.slot(m.Player1Char, m.ID)
		if err != nil {
			return nil, err
		}
		p2, err := a.slot(m.Player2Char, m.ID)
		if err != nil {
			return nil, err
		}
		w, err := a.slot(m.WinnerChar, m.ID)
		if err != nil {
			return nil, err
		}
		if err := checkWinner(m); err != nil {
			return nil, err
		}

		table[p1].Matches++
		table[p2].Matches++
		table[p1].Usage++
		table[p2].Usage++
		table[w].Wins++
	}

	for i := range table {
		table[i].WinRate = model.WinRate(table[i].Wins, table[i].Matches)
	}
	return table, nil
}

// UsedCharacterStats returns CharacterStats restricted to characters with at
// least one match, ordered by win rate desc, then match count desc, then name.
func (a *Aggregator) UsedCharacterStats(matches []model.Match) (model.CharacterTable, error) {
	all, err := a.CharacterStats(matches)
	if err != nil {
		return nil, err
	}
	used := make(model.CharacterTable, 0, len(all))
	for _, s := range all {
		if s.Matches > 0 {
			used = append(used, s)
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		if used[i].WinRate != used[j].WinRate {
			return used[i].WinRate > used[j].WinRate
		}
		if used[i].Matches != used[j].Matches {
			return used[i].Matches > used[j].Matches
		}
		return used[i].Character < used[j].Character
	})
	return used, nil
}

// UsedCharacters returns the sorted distinct character names that appear in
// any match, as a participant or as the winner.
func UsedCharacters(matches []model.Match) []string {
	seen := make(map[string]struct{})
	for _, m := range matches {
		for _, c := range []string{m.Player1Char, m.Player2Char, m.WinnerChar} {
			if c != "" {
				seen[c] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// UsedCharacters is the method form of the package-level UsedCharacters.
func (a *Aggregator) UsedCharacters(matches []model.Match) []string {
	return UsedCharacters(matches)
}

// MatchupStats folds matches into head-to-head records keyed by the
// lexicographically ordered character pair. Only pairs that met appear.
func (a *Aggregator) MatchupStats(matches []model.Match) (model.MatchupTable, error) {
	byKey := make(map[model.MatchupKey]*model.MatchupStats)
	for _, m := range matches {
		for _, c := range []string{m.Player1Char, m.Player2Char, m.WinnerChar} {
			if _, err := a.slot(c, m.ID); err != nil {
				return nil, err
			}
		}
		if err := checkWinner(m); err != nil {
			return nil, err
		}

		k := model.NewMatchupKey(m.Player1Char, m.Player2Char)
		s := byKey[k]
		if s == nil {
			s = &model.MatchupStats{MatchupKey: k}
			byKey[k] = s
		}
		s.Total++
		if m.WinnerChar == k.Char1 {
			s.Char1Wins++
		} else {
			s.Char2Wins++
		}
	}

	out := make(model.MatchupTable, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Char1 != out[j].Char1 {
			return out[i].Char1 < out[j].Char1
		}
		return out[i].Char2 < out[j].Char2
	})
	return out, nil
}

// CharacterMatchups returns character's record against every other catalog
// character, busiest opponents first. Mirror matches are excluded.
func (a *Aggregator) CharacterMatchups(character string, matches []model.Match) ([]model.OpponentStats, error) {
	if _, err := a.slot(character, 0); err != nil {
		return nil, err
	}

	names := a.catalog.Characters()
	rows := make([]model.OpponentStats, 0, len(names)-1)
	pos := make(map[string]int, len(names))
	for _, n := range names {
		if n == character {
			continue
		}
		pos[n] = len(rows)
		rows = append(rows, model.OpponentStats{Opponent: n})
	}

	for _, m := range matches {
		var opponent string
		switch {
		case m.Player1Char == m.Player2Char:
			continue
		case m.Player1Char == character:
			opponent = m.Player2Char
		case m.Player2Char == character:
			opponent = m.Player1Char
		default:
			continue
		}
		i, ok := pos[opponent]
		if !ok {
			return nil, &UnknownCharacterError{Name: opponent, MatchID: m.ID}
		}
		if err := checkWinner(m); err != nil {
			return nil, err
		}
		rows[i].Matches++
		if m.WinnerChar == character {
			rows[i].Wins++
		} else {
			rows[i].Losses++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Matches != rows[j].Matches {
			return rows[i].Matches > rows[j].Matches
		}
		return rows[i].Opponent < rows[j].Opponent
	})
	return rows, nil
}
