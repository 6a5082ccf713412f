package bbref

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/assemble"
	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Stat types for BoxScores.
const (
	StatBasic    = "BASIC"
	StatAdvanced = "ADVANCED"
)

// PeriodGame selects the full-game box score.
const PeriodGame = "GAME"

var (
	periodPattern = regexp.MustCompile(`^(GAME|Q[1-4]|H[12]|OT[1-9])$`)
	boxScoreHref  = regexp.MustCompile(`^/boxscores/\d{9}[A-Z]{3}\.html$`)
	teamHref      = regexp.MustCompile(`^/teams/([A-Z]{3})/`)
)

// BoxScores returns both teams' box scores for the game team1 and team2
// played on date, keyed by team abbreviation. period is GAME, Q1-Q4, H1, H2
// or OTn; advanced stats exist only for the full game.
func (h *Handler) BoxScores(ctx context.Context, date time.Time, team1, team2, period, statType string) (map[string]provider.Table, error) {
	t1, err := h.checkTeam(team1)
	if err != nil {
		return nil, err
	}
	t2, err := h.checkTeam(team2)
	if err != nil {
		return nil, err
	}
	if t1 == t2 {
		return nil, fmt.Errorf("%w: team1 and team2 are both %s", provider.ErrInvalidArgument, t1)
	}
	statType = strings.ToUpper(statType)
	if statType != StatBasic && statType != StatAdvanced {
		return nil, fmt.Errorf("%w: stat type must be %s or %s, got %q",
			provider.ErrInvalidArgument, StatBasic, StatAdvanced, statType)
	}
	period = strings.ToUpper(period)
	if period == "" {
		period = PeriodGame
	}
	if !periodPattern.MatchString(period) {
		return nil, fmt.Errorf("%w: unknown period %q", provider.ErrInvalidArgument, period)
	}
	if statType == StatAdvanced && period != PeriodGame {
		return nil, fmt.Errorf("%w: advanced box scores exist only for the full game", provider.ErrInvalidArgument)
	}

	suffix, err := h.GameSuffix(ctx, date, t1, t2)
	if err != nil {
		return nil, err
	}
	doc, err := h.fetch.Document(ctx, suffix)
	if err != nil {
		return nil, err
	}

	template := "box-{team}-{period}-basic"
	if statType == StatAdvanced {
		template = "box-{team}-{period}-advanced"
	}
	season := provider.SeasonEndYear(date)

	keys := []string{t1, t2}
	out := make([]provider.Table, 0, len(keys))
	for _, team := range keys {
		node, err := tables.LocateOne(doc, tables.ByTemplate(template, team, strings.ToLower(period)))
		if err != nil {
			return nil, fmt.Errorf("%s box score for %s: %w", period, team, err)
		}
		t, err := extract(node, schema.BoxScore,
			schema.WithIdentifiers(playerIDs(node)),
			schema.WithNormalizer(h.normalizer, team, season),
		)
		if err != nil {
			return nil, fmt.Errorf("%s box score for %s: %w", period, team, err)
		}
		out = append(out, t)
	}
	h.logger.Debug("box scores extracted", "game", suffix, "period", period, "stat_type", statType)
	return assemble.Group(keys, out)
}

// GameSuffix finds the box-score page path of the game two teams played on
// date by scanning that day's scoreboard.
func (h *Handler) GameSuffix(ctx context.Context, date time.Time, team1, team2 string) (string, error) {
	path := fmt.Sprintf("boxscores/index.fcgi?year=%d&month=%d&day=%d", date.Year(), int(date.Month()), date.Day())
	doc, err := h.fetch.Document(ctx, path)
	if err != nil {
		return "", err
	}

	t1, t2 := strings.ToUpper(team1), strings.ToUpper(team2)
	var suffix string
	doc.Find("table.teams").EachWithBreak(func(_ int, game *goquery.Selection) bool {
		var box string
		playing := map[string]bool{}
		for _, a := range tables.Anchors(game, nil) {
			if boxScoreHref.MatchString(a.Href) {
				box = a.Href
			}
			if m := teamHref.FindStringSubmatch(a.Href); m != nil {
				playing[m[1]] = true
			}
		}
		if box != "" && playing[t1] && playing[t2] {
			suffix = box
			return false
		}
		return true
	})
	if suffix == "" {
		return "", fmt.Errorf("%w: no %s-%s game on %s", provider.ErrNotFound, t1, t2, date.Format(provider.DateLayout))
	}
	return suffix, nil
}

// AllStarBoxScore returns the all-star game box score for year, keyed by the
// all-star team names. Selected players who did not play are appended to
// their side with the team they played for that season.
func (h *Handler) AllStarBoxScore(ctx context.Context, year int) (map[string]provider.Table, error) {
	if year < h.league.FirstAllStarGame || year >= h.now().Year() {
		return nil, fmt.Errorf("%w: all-star year %d outside %d-%d",
			provider.ErrInvalidArgument, year, h.league.FirstAllStarGame, h.now().Year()-1)
	}
	doc, err := h.fetch.Document(ctx, fmt.Sprintf("allstar/NBA_%d.html", year))
	if err != nil {
		return nil, err
	}

	nodes, err := tables.Locate(doc, tables.ByOrdinal(1, 3))
	if err != nil {
		return nil, fmt.Errorf("all-star %d: %w", year, err)
	}
	headings := tables.Texts(doc, "div.section_heading > h2")
	if len(headings) < 3 {
		return nil, fmt.Errorf("%w: all-star %d has %d section headings, want at least 3",
			provider.ErrMalformedTable, year, len(headings))
	}

	sides := make([]provider.Table, 0, len(nodes))
	for i, node := range nodes {
		t, err := extract(node, schema.AllStarBox)
		if err != nil {
			return nil, fmt.Errorf("all-star %d side %d: %w", year, i+1, err)
		}
		sides = append(sides, t)
	}
	groups, err := assemble.Group(headings[1:3], sides)
	if err != nil {
		return nil, err
	}

	labels := tables.Texts(doc, "ul.page_index > li > div")
	players := tables.Texts(doc, "ul.page_index > li > div > a")
	if len(labels) == 0 || len(players) == 0 {
		return groups, nil
	}
	for i, p := range players {
		players[i] = names.StripDiacritics(p)
	}
	dnps, err := assemble.ParseDNPs(labels[0], players)
	if err != nil {
		return nil, fmt.Errorf("all-star %d: %w", year, err)
	}
	h.logger.Debug("augmenting all-star rosters", "year", year, "dnps", len(dnps))
	return assemble.Augment(ctx, groups, dnps, h, assemble.Augmentation{
		Key:        "PLAYER",
		TeamColumn: "TEAM",
		Season:     year,
	})
}
