package bbref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// searchYears matches the career span appended to search results,
// "LeBron James (2004-2025)".
var searchYears = regexp.MustCompile(`\s*\(\d{4}(-\d{4})?\)\s*$`)

// PlayerSeasons returns a player's per-game season table. The site search
// redirects straight to the profile for a unique name; otherwise the result
// whose name matches exactly is followed.
func (h *Handler) PlayerSeasons(ctx context.Context, name string) (provider.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return provider.Table{}, fmt.Errorf("%w: empty player name", provider.ErrInvalidArgument)
	}

	doc, err := h.fetch.Document(ctx, "search/search.fcgi?search="+url.QueryEscape(name))
	if err != nil {
		return provider.Table{}, err
	}
	node, err := seasonTable(doc)
	if errors.Is(err, provider.ErrNotFound) {
		var profile string
		profile, err = searchResult(doc, name)
		if err != nil {
			return provider.Table{}, err
		}
		if doc, err = h.fetch.Document(ctx, profile); err != nil {
			return provider.Table{}, err
		}
		node, err = seasonTable(doc)
	}
	if err != nil {
		return provider.Table{}, fmt.Errorf("player %q: %w", name, err)
	}
	return extract(node, schema.PlayerSeasons)
}

func seasonTable(doc *tables.Document) (*goquery.Selection, error) {
	node, err := tables.LocateOne(doc, tables.ByID("per_game"))
	if errors.Is(err, provider.ErrNotFound) {
		node, err = tables.LocateOne(doc, tables.ByID("per_game_stats"))
	}
	return node, err
}

// searchResult picks the profile link whose name matches, ignoring accents
// and case.
func searchResult(doc *tables.Document, name string) (string, error) {
	want := strings.ToLower(names.StripDiacritics(name))
	for _, a := range tables.Anchors(doc.Find("div.search-item-name"), names.PlayerProfile) {
		if _, ok := names.PlayerIDFromHref(a.Href); !ok {
			continue
		}
		got := strings.ToLower(names.StripDiacritics(searchYears.ReplaceAllString(a.Text, "")))
		if got == want {
			return a.Href, nil
		}
	}
	return "", fmt.Errorf("%w: no player named %q", provider.ErrNotFound, name)
}
