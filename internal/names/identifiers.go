package names

import (
	"net/url"
	"regexp"
	"strings"
)

// Anchor is a hyperlink as it appears on a page.
type Anchor struct {
	Text string
	Href string
}

// IdentifierMap maps a displayed player name to the site's stable player
// identifier. It is built per page and never shared across extractions.
type IdentifierMap map[string]string

// PlayerProfile matches player profile and game-log links. Callers use it to
// collect candidate anchors.
var PlayerProfile = regexp.MustCompile(`/players/`)

// profilePath is /players/<letter>/<id>.html; the letter directory is the
// site's bucket for surnames.
var profilePath = regexp.MustCompile(`^/players/[a-z]/([a-z0-9.'-]+)\.html$`)

// PlayerIDFromHref extracts the identifier from a profile link:
// "/players/c/curryst01.html" → "curryst01". Game-log links and anything
// else that is not a profile page return ok=false.
func PlayerIDFromHref(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if strings.Contains(u.Path, "/gamelog") {
		return "", false
	}
	m := profilePath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ResolveIdentifiers builds the name → identifier map for one page.
// Anchors are taken in document order; if a name links to two different
// players the last anchor wins.
func ResolveIdentifiers(anchors []Anchor) IdentifierMap {
	ids := make(IdentifierMap, len(anchors))
	for _, a := range anchors {
		id, ok := PlayerIDFromHref(a.Href)
		if !ok {
			continue
		}
		name := strings.TrimSpace(a.Text)
		if name == "" {
			continue
		}
		ids[name] = id
	}
	return ids
}

// Lookup returns the identifier for a displayed name. Two-way markers are
// ignored.
func (m IdentifierMap) Lookup(name string) (string, bool) {
	id, ok := m[StripTwoWay(name)]
	return id, ok
}
