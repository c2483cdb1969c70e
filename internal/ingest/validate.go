package ingest

import (
	"fmt"

	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/roster"
)

// ValidateMatch checks that both sides and the winner are set, that they are
// catalog characters, and that the winner is one of the two sides. When a
// winner id is present it must name one of the two player ids.
func ValidateMatch(m model.Match, cat *roster.Catalog) error {
	switch {
	case m.Player1Char == "":
		return fmt.Errorf("%w: player1 character missing", ErrInvalidMatch)
	case m.Player2Char == "":
		return fmt.Errorf("%w: player2 character missing", ErrInvalidMatch)
	case m.WinnerChar == "":
		return fmt.Errorf("%w: winner character missing", ErrInvalidMatch)
	}
	for _, c := range []string{m.Player1Char, m.Player2Char} {
		if !cat.Contains(c) {
			return fmt.Errorf("%w: unknown character %q", ErrInvalidMatch, c)
		}
	}
	if m.WinnerChar != m.Player1Char && m.WinnerChar != m.Player2Char {
		return fmt.Errorf("%w: winner %q did not play", ErrInvalidMatch, m.WinnerChar)
	}
	if m.WinnerID != "" && m.WinnerID != m.Player1ID && m.WinnerID != m.Player2ID {
		return fmt.Errorf("%w: winner id %q did not play", ErrInvalidMatch, m.WinnerID)
	}
	return nil
}

// CanonicalMatch resolves loosely spelled character names ("devil_jin") to
// their catalog form and then validates the result.
func CanonicalMatch(m model.Match, cat *roster.Catalog) (model.Match, error) {
	for _, f := range []*string{&m.Player1Char, &m.Player2Char, &m.WinnerChar} {
		if name, ok := cat.Lookup(*f); ok {
			*f = name
		}
	}
	if err := ValidateMatch(m, cat); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// ValidatePlayer checks the id and name are set and that the main
// character, rank and region are empty or known to the catalog.
func ValidatePlayer(p model.Player, cat *roster.Catalog) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id missing", ErrInvalidPlayer)
	case p.Name == "":
		return fmt.Errorf("%w: name missing", ErrInvalidPlayer)
	case p.MainChar != "" && !cat.Contains(p.MainChar):
		return fmt.Errorf("%w: unknown main character %q", ErrInvalidPlayer, p.MainChar)
	case !cat.ValidRank(p.Rank):
		return fmt.Errorf("%w: unknown rank %q", ErrInvalidPlayer, p.Rank)
	case !cat.ValidRegion(p.Region):
		return fmt.Errorf("%w: unknown region %q", ErrInvalidPlayer, p.Region)
	}
	return nil
}

// CanonicalPlayer resolves the main character spelling and validates.
func CanonicalPlayer(p model.Player, cat *roster.Catalog) (model.Player, error) {
	if name, ok := cat.Lookup(p.MainChar); ok {
		p.MainChar = name
	}
	if err := ValidatePlayer(p, cat); err != nil {
		return model.Player{}, err
	}
	return p, nil
}
