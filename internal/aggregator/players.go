package aggregator

import (
	"sort"

	"github.com/pable/tkstats/internal/model"
)

// sideOf returns the character playerID used in m and whether they won.
// A match with an explicit WinnerID decides by id; older records without one
// fall back to the winning character, which is ambiguous for mirror matches
// and counts as a loss there.
func sideOf(m *model.Match, playerID string) (character string, won bool) {
	character = m.Player2Char
	if m.Player1ID == playerID {
		character = m.Player1Char
	}
	if m.WinnerID != "" {
		return character, m.WinnerID == playerID
	}
	return character, m.Player1Char != m.Player2Char && m.WinnerChar == character
}

// PlayerStats summarises the matches playerID took part in. It returns nil
// when no player in players has that id; a registered player without
// matches gets a zero-valued summary.
func (a *Aggregator) PlayerStats(playerID string, matches []model.Match, players []model.Player) *model.PlayerStats {
	var player *model.Player
	for i := range players {
		if players[i].ID == playerID {
			player = &players[i]
			break
		}
	}
	if player == nil {
		return nil
	}

	out := &model.PlayerStats{
		Player:         *player,
		CharacterStats: []model.PlayerCharacterStats{},
		RecentMatches:  []model.Match{},
	}
	byChar := make(map[string]*model.PlayerCharacterStats)
	var qualifying []model.Match

	for i := range matches {
		m := &matches[i]
		if !m.Involves(playerID) {
			continue
		}
		qualifying = append(qualifying, *m)

		character, won := sideOf(m, playerID)
		cs := byChar[character]
		if cs == nil {
			cs = &model.PlayerCharacterStats{Character: character}
			byChar[character] = cs
		}
		cs.Matches++
		out.TotalMatches++
		if won {
			cs.Wins++
			out.Wins++
		}
	}
	out.Losses = out.TotalMatches - out.Wins
	out.WinRate = model.WinRate(out.Wins, out.TotalMatches)

	for _, cs := range byChar {
		out.CharacterStats = append(out.CharacterStats, *cs)
	}
	sort.Slice(out.CharacterStats, func(i, j int) bool {
		ci, cj := out.CharacterStats[i], out.CharacterStats[j]
		if ci.Matches != cj.Matches {
			return ci.Matches > cj.Matches
		}
		return ci.Character < cj.Character
	})

	out.RecentMatches = RecentMatches(qualifying, model.RecentMatchLimit)
	return out
}

// RecentMatches returns up to limit matches, newest first. Matches without a
// timestamp sort as the oldest; equal timestamps fall back to id desc.
// The input slice is not modified.
func RecentMatches(matches []model.Match, limit int) []model.Match {
	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sortTime(sorted[i]), sortTime(sorted[j])
		if ti != tj {
			return ti > tj
		}
		return sorted[i].ID > sorted[j].ID
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// sortTime folds negative timestamps onto 0, the unknown value.
func sortTime(m model.Match) int64 {
	if m.Timestamp < 0 {
		return 0
	}
	return m.Timestamp
}

// Rankings returns a standing for every player, best win rate first, then
// most wins, then name.
func (a *Aggregator) Rankings(matches []model.Match, players []model.Player) []model.PlayerStanding {
	index := make(map[string]*model.PlayerStanding, len(players))
	out := make([]model.PlayerStanding, len(players))
	for i, p := range players {
		out[i] = model.PlayerStanding{Player: p}
		index[p.ID] = &out[i]
	}

	for i := range matches {
		m := &matches[i]
		seen := ""
		for _, id := range []string{m.Player1ID, m.Player2ID} {
			st := index[id]
			if st == nil || id == seen {
				continue
			}
			seen = id
			st.Matches++
			if _, won := sideOf(m, id); won {
				st.Wins++
			}
		}
	}

	for i := range out {
		out[i].Losses = out[i].Matches - out[i].Wins
		out[i].WinRate = model.WinRate(out[i].Wins, out[i].Matches)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Player.Name < out[j].Player.Name
	})
	return out
}
