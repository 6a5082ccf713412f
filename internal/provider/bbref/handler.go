package bbref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/config"
	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Handler implements every extraction operation: build the page path, fetch,
// locate, clean, map and assemble. It holds no per-call state and is safe for
// concurrent use.
type Handler struct {
	fetch      Fetcher
	render     Renderer
	normalizer *names.Normalizer
	league     config.LeagueConfig
	now        func() time.Time
	logger     *slog.Logger
}

// NewHandler creates a handler. render may be nil, in which case tables the
// site fills in with script are read from the static page instead.
func NewHandler(fetch Fetcher, render Renderer, exceptions *names.NameMap, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		fetch:      fetch,
		render:     render,
		normalizer: names.NewNormalizer(exceptions),
		league:     config.NBA(),
		now:        time.Now,
		logger:     logger,
	}
}

// Data formats accepted by the team and roster-stats operations.
const (
	FormatTotals    = "TOTALS"
	FormatPerGame   = "PER_GAME"
	FormatRank      = "RANK"
	FormatYearYear  = "YEAR/YEAR"
	FormatPerMinute = "PER_MINUTE"
	FormatPerPoss   = "PER_POSS"
	FormatAdvanced  = "ADVANCED"
)

// Split row labels of the team-and-opponent and team-misc tables.
var (
	teamRows = map[string]string{
		FormatTotals:   "Team",
		FormatPerGame:  "Team/G",
		FormatRank:     "Lg Rank",
		FormatYearYear: "Year/Year",
	}
	opponentRows = map[string]string{
		FormatTotals:   "Opponent",
		FormatPerGame:  "Opponent/G",
		FormatRank:     "Lg Rank",
		FormatYearYear: "Year/Year",
	}
	miscRows = map[string]string{
		FormatTotals: "Team",
		FormatRank:   "Lg Rank",
	}
	rosterStatsFormats = []string{FormatTotals, FormatPerGame, FormatPerMinute, FormatPerPoss, FormatAdvanced}
)

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

func (h *Handler) checkTeam(team string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(team))
	if !schema.IsTeamAbbr(t) {
		return "", fmt.Errorf("%w: unknown team abbreviation %q", provider.ErrInvalidArgument, team)
	}
	return t, nil
}

func (h *Handler) checkSeason(season int) error {
	if !h.league.ValidSeason(season) {
		return fmt.Errorf("%w: season %d outside %d-%d",
			provider.ErrInvalidArgument, season, h.league.FirstSeason, h.league.CurrentSeason)
	}
	return nil
}

func checkFormat(format string, allowed []string) (string, error) {
	f := strings.ToUpper(strings.TrimSpace(format))
	if !slices.Contains(allowed, f) {
		return "", fmt.Errorf("%w: data format %q not one of %s",
			provider.ErrInvalidArgument, format, strings.Join(allowed, ", "))
	}
	return f, nil
}

func rowFormats(rows map[string]string) []string {
	out := make([]string, 0, len(rows))
	for f := range rows {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// --------------------------------------------------------------------------
// Shared pipeline steps
// --------------------------------------------------------------------------

// locate fetches path and returns the one table sel matches.
func (h *Handler) locate(ctx context.Context, path string, sel tables.Selector) (*goquery.Selection, error) {
	doc, err := h.fetch.Document(ctx, path)
	if err != nil {
		return nil, err
	}
	node, err := tables.LocateOne(doc, sel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// scripted returns a table the site may fill in with script, trying ids in
// order. With a renderer the page is rendered headless; otherwise the static
// page is used, where the table sits inside a comment.
func (h *Handler) scripted(ctx context.Context, path string, ids ...string) (*goquery.Selection, error) {
	var doc *tables.Document
	if h.render == nil {
		d, err := h.fetch.Document(ctx, path)
		if err != nil {
			return nil, err
		}
		doc = d
	} else {
		conds := make([]string, len(ids))
		for i, id := range ids {
			conds[i] = fmt.Sprintf("@id=%q", id)
		}
		outer, err := h.render.Render(ctx, path, "//table["+strings.Join(conds, " or ")+"]")
		if err != nil {
			return nil, err
		}
		if doc, err = tables.ParseString(outer); err != nil {
			return nil, fmt.Errorf("parse rendered %s: %w", path, err)
		}
	}

	var err error
	for _, id := range ids {
		var node *goquery.Selection
		node, err = tables.LocateOne(doc, tables.ByID(id))
		if err == nil {
			return node, nil
		}
		if !errors.Is(err, provider.ErrNotFound) {
			break
		}
	}
	return nil, fmt.Errorf("%s: %w", path, err)
}

// extract cleans and maps one located table.
func extract(node *goquery.Selection, s schema.CategorySchema, opts ...schema.Option) (provider.Table, error) {
	raw, err := tables.CleanNode(node, s.Clean)
	if err != nil {
		return provider.Table{}, fmt.Errorf("clean %s: %w", s.Category, err)
	}
	t, err := schema.Map(raw, s, opts...)
	if err != nil {
		return provider.Table{}, fmt.Errorf("map %s: %w", s.Category, err)
	}
	return t, nil
}

// playerIDs resolves the profile links inside one table.
func playerIDs(node *goquery.Selection) names.IdentifierMap {
	return names.ResolveIdentifiers(tables.Anchors(node, names.PlayerProfile))
}

func teamPath(team string, season int) string {
	return fmt.Sprintf("teams/%s/%d.html", team, season)
}
