package bbref

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/albapepper/bbref-tables/internal/assemble"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Conference keys returned by Standings.
const (
	EasternConference = "EASTERN_CONF"
	WesternConference = "WESTERN_CONF"
)

// playoffsDivider separates regular-season and playoff games in schedules.
const playoffsDivider = "Playoffs"

var scheduleMonth = regexp.MustCompile(`/leagues/NBA_\d{4}_games-[a-z]+\.html$`)

// InjuryReport returns the league-wide current injury list.
func (h *Handler) InjuryReport(ctx context.Context) (provider.Table, error) {
	node, err := h.locate(ctx, "friv/injuries.fcgi", tables.First())
	if err != nil {
		return provider.Table{}, err
	}
	return extract(node, schema.InjuryReport)
}

// TeamRatings returns the league's team ratings for a season with a SEASON
// column second. When teams are given only their rows are kept.
func (h *Handler) TeamRatings(ctx context.Context, season int, teams ...string) (provider.Table, error) {
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	want := make([]string, 0, len(teams))
	for _, t := range teams {
		abbr, err := h.checkTeam(t)
		if err != nil {
			return provider.Table{}, err
		}
		want = append(want, abbr)
	}

	node, err := h.locate(ctx, fmt.Sprintf("leagues/NBA_%d_ratings.html", season), tables.ByID("ratings"))
	if err != nil {
		return provider.Table{}, err
	}
	t, err := extract(node, schema.Ratings, schema.WithConstant("SEASON", 1, provider.SeasonLabel(season)))
	if err != nil {
		return provider.Table{}, err
	}
	return schema.FilterRows(t, "TEAM", want...), nil
}

// Teams returns both conferences' compact standings, east first.
func (h *Handler) Teams(ctx context.Context, season int) (provider.Table, error) {
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	doc, err := h.fetch.Document(ctx, fmt.Sprintf("leagues/NBA_%d.html", season))
	if err != nil {
		return provider.Table{}, err
	}

	var out provider.Table
	for i, id := range []string{"confs_standings_E", "confs_standings_W"} {
		node, err := tables.LocateOne(doc, tables.ByID(id))
		if err != nil {
			return provider.Table{}, fmt.Errorf("teams %d: %w", season, err)
		}
		t, err := extract(node, schema.Teams)
		if err != nil {
			return provider.Table{}, fmt.Errorf("teams %d %s: %w", season, id, err)
		}
		if i == 0 {
			out = t
			continue
		}
		for _, r := range t.Records {
			out.Append(r)
		}
	}
	return out, nil
}

// Standings returns each conference's expanded standings keyed by
// EASTERN_CONF and WESTERN_CONF. Seasons without divisions fall back to the
// conference tables.
func (h *Handler) Standings(ctx context.Context, season int) (map[string]provider.Table, error) {
	if err := h.checkSeason(season); err != nil {
		return nil, err
	}
	doc, err := h.fetch.Document(ctx, fmt.Sprintf("leagues/NBA_%d.html", season))
	if err != nil {
		return nil, err
	}

	keys := []string{EasternConference, WesternConference}
	out := make([]provider.Table, 0, len(keys))
	for _, side := range []string{"E", "W"} {
		node, err := tables.LocateOne(doc, tables.ByID("divs_standings_"+side))
		if errors.Is(err, provider.ErrNotFound) {
			node, err = tables.LocateOne(doc, tables.ByID("confs_standings_"+side))
		}
		if err != nil {
			return nil, fmt.Errorf("standings %d: %w", season, err)
		}
		t, err := extract(node, schema.Standings)
		if err != nil {
			return nil, fmt.Errorf("standings %d %s: %w", season, side, err)
		}
		out = append(out, t)
	}
	return assemble.Group(keys, out)
}

// Schedule returns a season's games across every month page, either the
// regular season or only the playoffs.
func (h *Handler) Schedule(ctx context.Context, season int, playoffs bool) (provider.Table, error) {
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	first := fmt.Sprintf("leagues/NBA_%d_games.html", season)
	doc, err := h.fetch.Document(ctx, first)
	if err != nil {
		return provider.Table{}, err
	}

	var months []string
	for _, a := range tables.Anchors(doc.Find("div.filter"), scheduleMonth) {
		if !slices.Contains(months, a.Href) {
			months = append(months, a.Href)
		}
	}

	var parts []tables.RawTable
	if len(months) == 0 {
		node, err := tables.LocateOne(doc, tables.ByID("schedule"))
		if err != nil {
			return provider.Table{}, fmt.Errorf("%s: %w", first, err)
		}
		raw, err := tables.Extract(node)
		if err != nil {
			return provider.Table{}, err
		}
		parts = append(parts, raw)
	}
	for _, m := range months {
		page := doc
		if m != "/"+first {
			if page, err = h.fetch.Document(ctx, m); err != nil {
				return provider.Table{}, err
			}
		}
		node, err := tables.LocateOne(page, tables.ByID("schedule"))
		if err != nil {
			return provider.Table{}, fmt.Errorf("%s: %w", m, err)
		}
		raw, err := tables.Extract(node)
		if err != nil {
			return provider.Table{}, fmt.Errorf("%s: %w", m, err)
		}
		parts = append(parts, raw)
	}
	raw, err := tables.Concat(parts...)
	if err != nil {
		return provider.Table{}, fmt.Errorf("schedule %d: %w", season, err)
	}

	divider := tables.Equals(playoffsDivider).Through(tables.SpanFollowing)
	if playoffs {
		if !hasRow(raw, playoffsDivider) {
			return provider.Table{}, fmt.Errorf("%w: %d schedule has no playoff games", provider.ErrNotFound, season)
		}
		divider = tables.Equals(playoffsDivider).Through(tables.SpanPreceding)
	}
	s := schema.Schedule
	s.Clean.Sentinels = append(slices.Clone(s.Clean.Sentinels), divider)
	cleaned, err := tables.Clean(raw, s.Clean)
	if err != nil {
		return provider.Table{}, fmt.Errorf("clean %s: %w", s.Category, err)
	}
	t, err := schema.Map(cleaned, s)
	if err != nil {
		return provider.Table{}, fmt.Errorf("map %s: %w", s.Category, err)
	}
	h.logger.Debug("schedule extracted", "season", season, "playoffs", playoffs, "months", len(parts), "games", t.Len())
	return t, nil
}

// DraftClass returns one draft's picks in order.
func (h *Handler) DraftClass(ctx context.Context, year int) (provider.Table, error) {
	if err := h.checkSeason(year); err != nil {
		return provider.Table{}, err
	}
	node, err := h.locate(ctx, fmt.Sprintf("draft/NBA_%d.html", year), tables.ByID("stats"))
	if err != nil {
		return provider.Table{}, err
	}
	return extract(node, schema.DraftClass)
}

func hasRow(raw tables.RawTable, first string) bool {
	for _, r := range raw.Rows {
		if len(r) > 0 && r[0] == first {
			return true
		}
	}
	return false
}
