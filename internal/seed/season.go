package seed

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/provider/bbref"
	"github.com/albapepper/bbref-tables/internal/schema"
)

// League is the entity key of league-wide tables.
const League = "NBA"

// Run kinds stored in seed_runs.
const (
	KindSeason   = "season"
	KindInjuries = "injuries"
)

// Source is the extraction surface the seeder reads from. *bbref.Handler
// implements it.
type Source interface {
	Teams(ctx context.Context, season int) (provider.Table, error)
	Standings(ctx context.Context, season int) (map[string]provider.Table, error)
	TeamRatings(ctx context.Context, season int, teams ...string) (provider.Table, error)
	Schedule(ctx context.Context, season int, playoffs bool) (provider.Table, error)
	Roster(ctx context.Context, team string, season int) (provider.Table, error)
	RosterStats(ctx context.Context, team string, season int, format string, playoffs bool) (provider.Table, error)
	TeamStats(ctx context.Context, team string, season int, format string) (provider.Table, error)
	OpponentStats(ctx context.Context, team string, season int, format string) (provider.Table, error)
	InjuryReport(ctx context.Context) (provider.Table, error)
}

var _ Source = (*bbref.Handler)(nil)

// SeedSeason runs the full season flow: teams -> standings -> ratings ->
// schedule, then every team's roster and aggregates through a worker pool.
// Failures are collected per table; the run continues past them.
func SeedSeason(ctx context.Context, db DB, src Source, season, workers int, logger *slog.Logger) Result {
	start := time.Now()
	var result Result

	// 1. Teams; the team list drives the per-team phase.
	logger.Info("Seeding teams...", "season", season)
	teams, err := src.Teams(ctx, season)
	if err != nil {
		result.AddErrorf("fetch teams %d: %v", season, err)
		return finish(ctx, db, KindSeason, season, start, result, logger)
	}
	store(ctx, db, &result, Key{schema.CategoryTeams, League, season, ""}, teams)
	abbrs := teamAbbrs(teams)
	logger.Info("Teams done", "count", len(abbrs))

	// 2. League-wide tables
	standings, err := src.Standings(ctx, season)
	if err != nil {
		result.AddErrorf("fetch standings %d: %v", season, err)
	}
	for _, conf := range sortedKeys(standings) {
		store(ctx, db, &result, Key{schema.CategoryStandings, League, season, conf}, standings[conf])
	}

	if ratings, err := src.TeamRatings(ctx, season); err != nil {
		result.AddErrorf("fetch ratings %d: %v", season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryRatings, League, season, ""}, ratings)
	}

	if games, err := src.Schedule(ctx, season, false); err != nil {
		result.AddErrorf("fetch schedule %d: %v", season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategorySchedule, League, season, "REGULAR"}, games)
	}
	// Seasons in progress have no playoff games yet.
	if games, err := src.Schedule(ctx, season, true); errors.Is(err, provider.ErrNotFound) {
		logger.Debug("No playoff schedule", "season", season)
	} else if err != nil {
		result.AddErrorf("fetch playoff schedule %d: %v", season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategorySchedule, League, season, "PLAYOFFS"}, games)
	}

	// 3. Per-team tables, one team per unit of work
	if len(abbrs) > 0 {
		result.Add(seedTeams(ctx, db, src, season, abbrs, workers, logger))
	}

	return finish(ctx, db, KindSeason, season, start, result, logger)
}

// SeedInjuries stores the current league-wide injury report under season.
func SeedInjuries(ctx context.Context, db DB, src Source, season int, logger *slog.Logger) Result {
	start := time.Now()
	var result Result

	logger.Info("Seeding injury report...")
	report, err := src.InjuryReport(ctx)
	if err != nil {
		result.AddErrorf("fetch injury report: %v", err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryInjuryReport, League, season, ""}, report)
	}
	return finish(ctx, db, KindInjuries, season, start, result, logger)
}

// seedTeams fans the team list out to N workers. Each worker fetches one
// team's roster, per-game roster stats and both totals aggregates.
func seedTeams(ctx context.Context, db DB, src Source, season int, abbrs []string, workers int, logger *slog.Logger) Result {
	if workers < 1 {
		workers = 1
	}
	if workers > len(abbrs) {
		workers = len(abbrs)
	}

	ch := make(chan string, len(abbrs))
	for _, a := range abbrs {
		ch <- a
	}
	close(ch)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
		done   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for team := range ch {
				if ctx.Err() != nil {
					mu.Lock()
					result.AddErrorf("team %s: %v", team, ctx.Err())
					mu.Unlock()
					continue
				}
				r := seedTeam(ctx, db, src, season, team)

				mu.Lock()
				result.Add(r)
				done++
				logger.Info("Team progress", "team", team, "processed", done, "of", len(abbrs), "errors", len(r.Errors))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return result
}

func seedTeam(ctx context.Context, db DB, src Source, season int, team string) Result {
	var result Result

	if t, err := src.Roster(ctx, team, season); err != nil {
		result.AddErrorf("fetch roster %s %d: %v", team, season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryRoster, team, season, ""}, t)
	}
	if t, err := src.RosterStats(ctx, team, season, bbref.FormatPerGame, false); err != nil {
		result.AddErrorf("fetch roster stats %s %d: %v", team, season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryRosterStats, team, season, bbref.FormatPerGame}, t)
	}
	if t, err := src.TeamStats(ctx, team, season, bbref.FormatTotals); err != nil {
		result.AddErrorf("fetch team stats %s %d: %v", team, season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryTeamStats, team, season, bbref.FormatTotals}, t)
	}
	if t, err := src.OpponentStats(ctx, team, season, bbref.FormatTotals); err != nil {
		result.AddErrorf("fetch opponent stats %s %d: %v", team, season, err)
	} else {
		store(ctx, db, &result, Key{schema.CategoryOpponentStats, team, season, bbref.FormatTotals}, t)
	}
	return result
}

func store(ctx context.Context, db DB, result *Result, key Key, t provider.Table) {
	if err := UpsertTable(ctx, db, key, t); err != nil {
		result.AddErrorf("%v", err)
		return
	}
	result.TablesUpserted++
	result.RowsUpserted += t.Len()
}

func finish(ctx context.Context, db DB, kind string, season int, start time.Time, result Result, logger *slog.Logger) Result {
	result.Duration = time.Since(start)
	if err := recordRun(ctx, db, kind, season, start, result); err != nil {
		logger.Warn("Failed to record seed run", "error", err)
	}
	logger.Info("Seed complete", "kind", kind, "season", season, "summary", result.Summary())
	return result
}

// teamAbbrs returns the TEAM column's distinct values in table order.
func teamAbbrs(t provider.Table) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range t.Column("TEAM") {
		if v.IsAbsent() || seen[v.Text()] {
			continue
		}
		seen[v.Text()] = true
		out = append(out, v.Text())
	}
	return out
}

func sortedKeys(m map[string]provider.Table) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
