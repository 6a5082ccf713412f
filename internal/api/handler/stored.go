package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bbref-tables/internal/api/respond"
	"github.com/albapepper/bbref-tables/internal/cache"
)

// GetStoredTable returns a table the seeder stored. Query: variant.
func (h *Handler) GetStoredTable(w http.ResponseWriter, r *http.Request) {
	season, ok := intParam(w, r, "season")
	if !ok {
		return
	}
	category := chi.URLParam(r, "category")
	entity := strings.ToUpper(chi.URLParam(r, "entity"))
	variant := strings.ToUpper(r.URL.Query().Get("variant"))
	key := cache.Key("stored", category, entity, season, variant)
	h.passthrough(w, r, key, "stored_table", category, entity, season, variant)
}

// GetStoredSeasons lists the seasons stored for a category and entity,
// newest first.
func (h *Handler) GetStoredSeasons(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	entity := strings.ToUpper(chi.URLParam(r, "entity"))
	key := cache.Key("stored_seasons", category, entity)
	h.passthrough(w, r, key, "stored_seasons", category, entity)
}

// GetLastSeedRun returns the most recent run of a seed kind.
func (h *Handler) GetLastSeedRun(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	h.passthrough(w, r, cache.Key("seed_run", kind), "last_seed_run", kind)
}

// passthrough runs a prepared statement that builds the response JSON in
// Postgres and writes the bytes as is.
func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, key, stmt string, args ...any) {
	if h.store == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "No database configured")
		return
	}
	ttl := cache.TTLStored

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	var raw []byte
	err := h.store.QueryRow(r.Context(), stmt, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && raw == nil) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Nothing stored for "+key)
		return
	}
	if err != nil {
		h.logger.Error("Stored query failed", "statement", stmt, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Database query failed")
		return
	}

	etag := h.cache.Set(key, raw, ttl)
	respond.WriteJSON(w, raw, etag, ttl, false)
}
