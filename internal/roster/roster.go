// Package roster holds the fixed catalog of playable characters together with
// the rank and region labels a player profile may carry.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog is returned by New when a name list is malformed.
var ErrInvalidCatalog = errors.New("invalid roster catalog")

// Catalog is an immutable, ordered set of character names plus the rank and
// region enumerations. Build it once at start-up and pass it to consumers.
type Catalog struct {
	characters []string
	index      map[string]int
	ranks      []string
	rankSet    map[string]struct{}
	regions    []string
	regionSet  map[string]struct{}
}

// New builds a catalog. Character, rank and region names must be non-empty
// and unique within their list. At least one character is required.
func New(characters, ranks, regions []string) (*Catalog, error) {
	if len(characters) == 0 {
		return nil, fmt.Errorf("%w: no characters", ErrInvalidCatalog)
	}
	c := &Catalog{
		characters: make([]string, 0, len(characters)),
		index:      make(map[string]int, len(characters)),
	}
	for _, name := range characters {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty character name", ErrInvalidCatalog)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate character %q", ErrInvalidCatalog, name)
		}
		c.index[name] = len(c.characters)
		c.characters = append(c.characters, name)
	}

	var err error
	if c.ranks, c.rankSet, err = uniqueList("rank", ranks); err != nil {
		return nil, err
	}
	if c.regions, c.regionSet, err = uniqueList("region", regions); err != nil {
		return nil, err
	}
	return c, nil
}

func uniqueList(kind string, names []string) ([]string, map[string]struct{}, error) {
	out := make([]string, 0, len(names))
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, nil, fmt.Errorf("%w: empty %s", ErrInvalidCatalog, kind)
		}
		if _, dup := set[n]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalidCatalog, kind, n)
		}
		set[n] = struct{}{}
		out = append(out, n)
	}
	return out, set, nil
}

// Characters returns the character names in catalog order. The slice is a copy.
func (c *Catalog) Characters() []string {
	out := make([]string, len(c.characters))
	copy(out, c.characters)
	return out
}

// Len returns the number of characters.
func (c *Catalog) Len() int { return len(c.characters) }

// Contains reports whether name is a catalog character.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Index returns the catalog position of name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Ranks returns the rank labels in ladder order (lowest first).
func (c *Catalog) Ranks() []string {
	out := make([]string, len(c.ranks))
	copy(out, c.ranks)
	return out
}

// Regions returns the region labels.
func (c *Catalog) Regions() []string {
	out := make([]string, len(c.regions))
	copy(out, c.regions)
	return out
}

// ValidRank reports whether rank is empty or a known rank label.
func (c *Catalog) ValidRank(rank string) bool {
	if rank == "" {
		return true
	}
	_, ok := c.rankSet[rank]
	return ok
}

// ValidRegion reports whether region is empty or a known region label.
func (c *Catalog) ValidRegion(region string) bool {
	if region == "" {
		return true
	}
	_, ok := c.regionSet[region]
	return ok
}

// Lookup resolves a loosely typed name ("devil jin", "devil_jin", "JACK-7")
// to its catalog spelling.
func (c *Catalog) Lookup(name string) (string, bool) {
	if _, ok := c.index[name]; ok {
		return name, true
	}
	want := Slug(name)
	for _, ch := range c.characters {
		if Slug(ch) == want {
			return ch, true
		}
	}
	return "", false
}

// Slug converts a character name to its file-name form: lower case with
// spaces and hyphens replaced by underscores.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
