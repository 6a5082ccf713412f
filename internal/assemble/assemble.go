// Package assemble combines several extractions into one composite result.
//
// Two shapes exist: keyed grouping, where each side of a game keeps its own
// table, and augmentation, where entries listed elsewhere on the page are
// appended to one side using a value looked up from a second extraction.
// Either the whole composite succeeds or the call fails; partial results are
// never returned.
package assemble

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// Group keys each table by the caller's entity key, in argument order.
func Group(keys []string, tables []provider.Table) (map[string]provider.Table, error) {
	if len(keys) != len(tables) {
		return nil, fmt.Errorf("%w: %d keys for %d tables", provider.ErrMalformedTable, len(keys), len(tables))
	}
	out := make(map[string]provider.Table, len(keys))
	for i, k := range keys {
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%w: duplicate group key %q", provider.ErrMalformedTable, k)
		}
		out[k] = tables[i]
	}
	return out, nil
}

// PlayerLookup retrieves a player's season-by-season table. Records carry at
// least SEASON ("2018-19") and TEAM.
type PlayerLookup interface {
	PlayerSeasons(ctx context.Context, name string) (provider.Table, error)
}

// DNP is a player listed as selected but not playing, with the group (team
// name) they belong to.
type DNP struct {
	Name  string
	Group string
}

var parenthetical = regexp.MustCompile(`\((.*?)\)`)

// ParseDNPs pairs DNP names with the parenthesized group labels found in
// text, both in document order.
func ParseDNPs(text string, players []string) ([]DNP, error) {
	matches := parenthetical.FindAllStringSubmatch(text, -1)
	if len(matches) < len(players) {
		return nil, fmt.Errorf("%w: %d DNP players but %d team labels", provider.ErrMalformedField, len(players), len(matches))
	}
	out := make([]DNP, len(players))
	for i, p := range players {
		out[i] = DNP{Name: strings.TrimSpace(p), Group: strings.TrimSpace(matches[i][1])}
	}
	return out, nil
}

// Augmentation configures Augment.
type Augmentation struct {
	// Key is the primary-key column checked for existing entries.
	Key string
	// TeamColumn receives the looked-up team.
	TeamColumn string
	// Season is the end year whose team is wanted.
	Season int
}

// Augment appends each DNP missing from its group, with the team the player
// was on in the target season. Groups are copied, never modified.
//
// DNPs are processed in order: a player already present by key is skipped,
// which also absorbs replacements listed twice. Each player is looked up at
// most once per call.
func Augment(ctx context.Context, groups map[string]provider.Table, dnps []DNP, lookup PlayerLookup, aug Augmentation) (map[string]provider.Table, error) {
	out := make(map[string]provider.Table, len(groups))
	for k, t := range groups {
		out[k] = t.Clone()
	}

	teams := make(map[string]string)
	for _, d := range dnps {
		t, ok := out[d.Group]
		if !ok {
			return nil, fmt.Errorf("%w: DNP %q listed for unknown group %q", provider.ErrMalformedTable, d.Name, d.Group)
		}
		if t.Find(aug.Key, d.Name) >= 0 {
			continue
		}

		team, seen := teams[d.Name]
		if !seen {
			seasons, err := lookup.PlayerSeasons(ctx, d.Name)
			if err != nil {
				return nil, fmt.Errorf("look up %q: %w", d.Name, err)
			}
			team, err = SeasonTeam(seasons, aug.Season)
			if err != nil {
				return nil, fmt.Errorf("augment %q: %w", d.Name, err)
			}
			teams[d.Name] = team
		}

		ensureColumn(&t, aug.Key)
		ensureColumn(&t, aug.TeamColumn)
		t.Append(provider.Record{
			aug.Key:        provider.String(d.Name),
			aug.TeamColumn: provider.String(team),
		})
		out[d.Group] = t
	}
	return out, nil
}

// aggregateTeam matches the multi-team rows of a traded player's season:
// "TOT" on older pages, "2TM", "3TM" on newer ones.
var aggregateTeam = regexp.MustCompile(`^(TOT|\dTM)$`)

// SeasonTeam returns the one team a player was on in the season ending in
// endYear. If that season has no rows, the most recent earlier season is
// used. Zero or several candidate teams is ErrAmbiguousAugmentation.
func SeasonTeam(seasons provider.Table, endYear int) (string, error) {
	want := provider.SeasonLabel(endYear)

	label := ""
	for _, r := range seasons.Records {
		s := r.Get("SEASON").Text()
		if s == want {
			label = want
			break
		}
		if s < want && s > label {
			label = s
		}
	}
	if label == "" {
		return "", fmt.Errorf("%w: no season at or before %s", provider.ErrAmbiguousAugmentation, want)
	}

	var teams []string
	for _, r := range seasons.Records {
		if r.Get("SEASON").Text() != label {
			continue
		}
		team := r.Get("TEAM").Text()
		if team == "" || aggregateTeam.MatchString(team) || slices.Contains(teams, team) {
			continue
		}
		teams = append(teams, team)
	}
	if len(teams) != 1 {
		return "", fmt.Errorf("%w: season %s has teams %q", provider.ErrAmbiguousAugmentation, label, teams)
	}
	return teams[0], nil
}

func ensureColumn(t *provider.Table, column string) {
	if slices.Contains(t.Columns, column) {
		return
	}
	t.Columns = append(t.Columns, column)
	for _, r := range t.Records {
		r[column] = provider.Absent()
	}
}
