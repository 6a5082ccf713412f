package bbref

import (
	"context"
	"strings"

	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Roster returns a team's roster for the season ending in season, with
// profile identifiers and normalized names.
func (h *Handler) Roster(ctx context.Context, team string, season int) (provider.Table, error) {
	team, err := h.checkTeam(team)
	if err != nil {
		return provider.Table{}, err
	}
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}

	node, err := h.locate(ctx, teamPath(team, season), tables.ByID("roster"))
	if err != nil {
		return provider.Table{}, err
	}
	return extract(node, schema.Roster,
		schema.WithIdentifiers(playerIDs(node)),
		schema.WithNormalizer(h.normalizer, team, season),
	)
}

// TeamStats returns one row of the team half of the team-and-opponent table.
// format is TOTALS, PER_GAME, RANK or YEAR/YEAR.
func (h *Handler) TeamStats(ctx context.Context, team string, season int, format string) (provider.Table, error) {
	return h.aggregate(ctx, team, season, format, schema.TeamStats, teamRows)
}

// OpponentStats returns one row of the opponent half of the
// team-and-opponent table.
func (h *Handler) OpponentStats(ctx context.Context, team string, season int, format string) (provider.Table, error) {
	return h.aggregate(ctx, team, season, format, schema.OpponentStats, opponentRows)
}

func (h *Handler) aggregate(ctx context.Context, team string, season int, format string, s schema.CategorySchema, rows map[string]string) (provider.Table, error) {
	team, err := h.checkTeam(team)
	if err != nil {
		return provider.Table{}, err
	}
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	format, err = checkFormat(format, rowFormats(rows))
	if err != nil {
		return provider.Table{}, err
	}

	node, err := h.scripted(ctx, teamPath(team, season), "team_and_opponent")
	if err != nil {
		return provider.Table{}, err
	}
	t, err := extract(node, s)
	if err != nil {
		return provider.Table{}, err
	}
	return schema.PickRow(t, schema.SplitColumn, rows[format])
}

// TeamMisc returns one row of a team's miscellaneous table. format is TOTALS
// or RANK.
func (h *Handler) TeamMisc(ctx context.Context, team string, season int, format string) (provider.Table, error) {
	team, err := h.checkTeam(team)
	if err != nil {
		return provider.Table{}, err
	}
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	format, err = checkFormat(format, rowFormats(miscRows))
	if err != nil {
		return provider.Table{}, err
	}

	node, err := h.scripted(ctx, teamPath(team, season), "team_misc")
	if err != nil {
		return provider.Table{}, err
	}
	t, err := extract(node, schema.TeamMisc)
	if err != nil {
		return provider.Table{}, err
	}
	return schema.PickRow(t, schema.SplitColumn, miscRows[format])
}

// RosterStats returns a team's per-player stats in one data format, for the
// regular season or the playoffs.
func (h *Handler) RosterStats(ctx context.Context, team string, season int, format string, playoffs bool) (provider.Table, error) {
	team, err := h.checkTeam(team)
	if err != nil {
		return provider.Table{}, err
	}
	if err := h.checkSeason(season); err != nil {
		return provider.Table{}, err
	}
	format, err = checkFormat(format, rosterStatsFormats)
	if err != nil {
		return provider.Table{}, err
	}

	id := strings.ToLower(format)
	if playoffs {
		id = "playoffs_" + id
	}
	// Newer pages suffix the ids: per_game_stats, playoffs_totals_stats.
	node, err := h.scripted(ctx, teamPath(team, season), id, id+"_stats")
	if err != nil {
		return provider.Table{}, err
	}
	return extract(node, schema.RosterStats,
		schema.WithIdentifiers(playerIDs(node)),
		schema.WithNormalizer(h.normalizer, team, season),
	)
}
