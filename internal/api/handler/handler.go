// Package handler provides HTTP handlers for all API endpoints.
// Live routes run an extraction per cache miss and serialize the canonical
// tables; stored routes pass Postgres-built JSON through untouched.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bbref-tables/internal/api/respond"
	"github.com/albapepper/bbref-tables/internal/cache"
	"github.com/albapepper/bbref-tables/internal/config"
	"github.com/albapepper/bbref-tables/internal/provider"
)

// Extractor is the extraction surface the live routes call. *bbref.Handler
// implements it.
type Extractor interface {
	BoxScores(ctx context.Context, date time.Time, team1, team2, period, statType string) (map[string]provider.Table, error)
	AllStarBoxScore(ctx context.Context, year int) (map[string]provider.Table, error)
	InjuryReport(ctx context.Context) (provider.Table, error)
	Roster(ctx context.Context, team string, season int) (provider.Table, error)
	TeamStats(ctx context.Context, team string, season int, format string) (provider.Table, error)
	OpponentStats(ctx context.Context, team string, season int, format string) (provider.Table, error)
	TeamMisc(ctx context.Context, team string, season int, format string) (provider.Table, error)
	RosterStats(ctx context.Context, team string, season int, format string, playoffs bool) (provider.Table, error)
	TeamRatings(ctx context.Context, season int, teams ...string) (provider.Table, error)
	Teams(ctx context.Context, season int) (provider.Table, error)
	Standings(ctx context.Context, season int) (map[string]provider.Table, error)
	Schedule(ctx context.Context, season int, playoffs bool) (provider.Table, error)
	DraftClass(ctx context.Context, year int) (provider.Table, error)
	PlayerSeasons(ctx context.Context, name string) (provider.Table, error)
}

// Store runs the prepared statements db.New registers. *pgxpool.Pool
// implements it.
type Store interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	ext    Extractor
	store  Store
	cache  *cache.Cache
	cfg    *config.Config
	league config.LeagueConfig
	logger *slog.Logger
}

// New creates a Handler with shared dependencies. store may be nil.
func New(ext Extractor, store Store, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		ext:    ext,
		store:  store,
		cache:  c,
		cfg:    cfg,
		league: config.NBA(),
		logger: logger,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "bbref-tables",
		"version": "1.0.0",
		"status":  "running",
		"league":  h.league.ID,
		"docs":    "/docs/",
		"stored":  h.store != nil,
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unavailable",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	var n int
	if err := h.store.QueryRow(r.Context(), "health_check").Scan(&n); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serve answers from the cache when it can and otherwise runs load,
// caching the encoded result for ttl.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := load(r.Context())
	if err != nil {
		h.logger.Warn("Extraction failed", "key", key, "error", err)
		respond.WriteExtractError(w, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Encode response", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// intParam parses a numeric path parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("%s must be a year, got %q", name, raw))
		return 0, false
	}
	return n, true
}

// boolQuery reads an optional boolean query parameter, writing a 400 on
// failure.
func boolQuery(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("%s must be true or false, got %q", name, raw))
		return false, false
	}
	return b, true
}

func queryOr(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}
