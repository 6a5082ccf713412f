package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/bbref-tables/internal/api/respond"
	"github.com/albapepper/bbref-tables/internal/cache"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/provider/bbref"
)

var _ Extractor = (*bbref.Handler)(nil)

// GetBoxScores returns both teams' box scores keyed by team.
// Query: period (GAME, Q1-Q4, H1, H2, OTn) and stat (BASIC or ADVANCED).
func (h *Handler) GetBoxScores(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	date, err := time.Parse(provider.DateLayout, raw)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "date must be YYYY-MM-DD, got "+raw)
		return
	}
	team1 := strings.ToUpper(chi.URLParam(r, "team1"))
	team2 := strings.ToUpper(chi.URLParam(r, "team2"))
	period := strings.ToUpper(queryOr(r, "period", bbref.PeriodGame))
	stat := strings.ToUpper(queryOr(r, "stat", bbref.StatBasic))

	ttl := cache.GameTTL(date, time.Now())
	h.serve(w, r, cache.Key("boxscores", raw, team1, team2, period, stat), ttl, func(ctx context.Context) (any, error) {
		return h.ext.BoxScores(ctx, date, team1, team2, period, stat)
	})
}

// GetAllStarBoxScore returns an all-star game's box scores keyed by side.
func (h *Handler) GetAllStarBoxScore(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("allstar", year), cache.TTLHistorical, func(ctx context.Context) (any, error) {
		return h.ext.AllStarBoxScore(ctx, year)
	})
}

// GetInjuryReport returns the current league injury list.
func (h *Handler) GetInjuryReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, cache.Key("injuries"), cache.TTLLive, func(ctx context.Context) (any, error) {
		return h.ext.InjuryReport(ctx)
	})
}

// GetRoster returns a team's roster for a season.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	team, season, ok := teamSeason(w, r)
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("roster", team, season), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.Roster(ctx, team, season)
	})
}

// GetTeamStats returns one row of team aggregates. Query: format (default PER_GAME).
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	team, season, ok := teamSeason(w, r)
	if !ok {
		return
	}
	format := strings.ToUpper(queryOr(r, "format", bbref.FormatPerGame))
	h.serve(w, r, cache.Key("team_stats", team, season, format), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.TeamStats(ctx, team, season, format)
	})
}

// GetOpponentStats returns one row of opponent aggregates. Query: format (default PER_GAME).
func (h *Handler) GetOpponentStats(w http.ResponseWriter, r *http.Request) {
	team, season, ok := teamSeason(w, r)
	if !ok {
		return
	}
	format := strings.ToUpper(queryOr(r, "format", bbref.FormatPerGame))
	h.serve(w, r, cache.Key("opponent_stats", team, season, format), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.OpponentStats(ctx, team, season, format)
	})
}

// GetTeamMisc returns one row of miscellaneous team stats. Query: format (default TOTALS).
func (h *Handler) GetTeamMisc(w http.ResponseWriter, r *http.Request) {
	team, season, ok := teamSeason(w, r)
	if !ok {
		return
	}
	format := strings.ToUpper(queryOr(r, "format", bbref.FormatTotals))
	h.serve(w, r, cache.Key("team_misc", team, season, format), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.TeamMisc(ctx, team, season, format)
	})
}

// GetRosterStats returns per-player stats for a team season.
// Query: format (default PER_GAME) and playoffs.
func (h *Handler) GetRosterStats(w http.ResponseWriter, r *http.Request) {
	team, season, ok := teamSeason(w, r)
	if !ok {
		return
	}
	playoffs, ok := boolQuery(w, r, "playoffs")
	if !ok {
		return
	}
	format := strings.ToUpper(queryOr(r, "format", bbref.FormatPerGame))
	h.serve(w, r, cache.Key("roster_stats", team, season, format, playoffs), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.RosterStats(ctx, team, season, format, playoffs)
	})
}

// GetTeamRatings returns the season's team ratings. Query: team, repeatable,
// restricts the rows.
func (h *Handler) GetTeamRatings(w http.ResponseWriter, r *http.Request) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return
	}
	teams := r.URL.Query()["team"]
	for i, t := range teams {
		teams[i] = strings.ToUpper(t)
	}
	h.serve(w, r, cache.Key("ratings", season, strings.Join(teams, ",")), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.TeamRatings(ctx, season, teams...)
	})
}

// GetTeams returns both conferences' compact standings in one table.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("teams", season), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.Teams(ctx, season)
	})
}

// GetStandings returns expanded standings keyed by conference.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("standings", season), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.Standings(ctx, season)
	})
}

// GetSchedule returns a season's games. Query: playoffs.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return
	}
	playoffs, ok := boolQuery(w, r, "playoffs")
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("schedule", season, playoffs), cache.SeasonTTL(season, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.Schedule(ctx, season, playoffs)
	})
}

// GetDraftClass returns one draft's picks.
func (h *Handler) GetDraftClass(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	h.serve(w, r, cache.Key("draft", year), cache.SeasonTTL(year, h.league.CurrentSeason), func(ctx context.Context) (any, error) {
		return h.ext.DraftClass(ctx, year)
	})
}

// GetPlayerSeasons returns a player's per-game season table. Query: name.
func (h *Handler) GetPlayerSeasons(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "name query parameter is required")
		return
	}
	h.serve(w, r, cache.Key("player_seasons", strings.ToLower(name)), cache.TTLCurrentSeason, func(ctx context.Context) (any, error) {
		return h.ext.PlayerSeasons(ctx, name)
	})
}

func teamSeason(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return "", 0, false
	}
	return strings.ToUpper(chi.URLParam(r, "team")), season, true
}
