// Package names reconciles how the site spells people.
//
// Player names appear with and without diacritics depending on the page, and
// profile links carry a stable identifier that survives any spelling. The
// Normalizer folds display names to the unaccented form used in identifiers;
// ResolveIdentifiers maps names on one page to those identifiers.
//
// Nothing here keeps package-level mutable state. A NameMap is read-only
// after construction and safe to share.
package names

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliterations covers letters that carry no combining mark under NFD and
// so survive mark removal.
var transliterations = map[rune]string{
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'ß': "ss",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ı': "i",
	'þ': "th", 'Þ': "Th",
}

// StripDiacritics returns s with accents removed: "Jokić" → "Jokic",
// "Dončić" → "Doncic". ASCII input is returned unchanged.
func StripDiacritics(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if t, ok := transliterations[r]; ok {
			b.WriteString(t)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

// StripTwoWay removes the "(TW)" two-way contract marker roster pages append
// to some names.
func StripTwoWay(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "(TW)", ""))
}

// Exception registers the canonical spelling for one displayed name on one
// team in one season.
type Exception struct {
	Team      string `json:"team"`
	Season    int    `json:"season"`
	Displayed string `json:"displayed"`
	Canonical string `json:"canonical"`
}

type teamSeason struct {
	team   string
	season int
}

// NameMap holds spelling exceptions keyed by (team, season).
type NameMap struct {
	sets map[teamSeason]map[string]string
}

// NewNameMap builds a map from exceptions. Later entries for the same
// displayed name replace earlier ones.
func NewNameMap(exceptions ...Exception) *NameMap {
	m := &NameMap{sets: make(map[teamSeason]map[string]string)}
	for _, e := range exceptions {
		k := teamSeason{strings.ToUpper(e.Team), e.Season}
		set, ok := m.sets[k]
		if !ok {
			set = make(map[string]string)
			m.sets[k] = set
		}
		set[e.Displayed] = e.Canonical
	}
	return m
}

// LoadNameMap reads a JSON array of exceptions from path.
func LoadNameMap(path string) (*NameMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read name exceptions: %w", err)
	}
	var exceptions []Exception
	if err := json.Unmarshal(data, &exceptions); err != nil {
		return nil, fmt.Errorf("decode name exceptions %s: %w", path, err)
	}
	return NewNameMap(exceptions...), nil
}

// Has reports whether (team, season) has any registered exceptions.
func (m *NameMap) Has(team string, season int) bool {
	if m == nil {
		return false
	}
	_, ok := m.sets[teamSeason{strings.ToUpper(team), season}]
	return ok
}

// Lookup returns the registered canonical spelling of displayed.
func (m *NameMap) Lookup(team string, season int, displayed string) (string, bool) {
	if m == nil {
		return "", false
	}
	c, ok := m.sets[teamSeason{strings.ToUpper(team), season}][displayed]
	return c, ok
}

// Len returns the number of registered exceptions.
func (m *NameMap) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, set := range m.sets {
		n += len(set)
	}
	return n
}

// Normalizer folds display names to canonical form.
type Normalizer struct {
	exceptions *NameMap
}

// NewNormalizer returns a Normalizer over exceptions, which may be nil.
func NewNormalizer(exceptions *NameMap) *Normalizer {
	return &Normalizer{exceptions: exceptions}
}

// Normalize returns the canonical spelling of displayed for a team's season.
//
// The default is the diacritic-stripped name. When (team, season) has
// registered exceptions and the stripped name collides with a different
// roster member's stripped name, the registered spelling is used instead.
func (n *Normalizer) Normalize(displayed, team string, season int, roster []string) string {
	stripped := StripDiacritics(strings.TrimSpace(displayed))
	if n == nil || !n.exceptions.Has(team, season) {
		return stripped
	}
	canonical, ok := n.exceptions.Lookup(team, season, displayed)
	if !ok {
		return stripped
	}
	for _, other := range roster {
		if other == displayed {
			continue
		}
		if StripDiacritics(strings.TrimSpace(other)) == stripped {
			return canonical
		}
	}
	return stripped
}

// NormalizeAll normalizes every name of one roster against the others.
func (n *Normalizer) NormalizeAll(roster []string, team string, season int) []string {
	out := make([]string, len(roster))
	for i, name := range roster {
		out[i] = n.Normalize(name, team, season, roster)
	}
	return out
}
