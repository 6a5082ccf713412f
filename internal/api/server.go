// Package api wires the HTTP router: middleware stack, live extraction
// routes and routes over tables the seeder stored.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/albapepper/bbref-tables/internal/api/docs"
	"github.com/albapepper/bbref-tables/internal/api/handler"
	"github.com/albapepper/bbref-tables/internal/cache"
	"github.com/albapepper/bbref-tables/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. store may be nil when no database is configured.
func NewRouter(ext handler.Extractor, store handler.Store, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(ext, store, appCache, cfg, logger)

	// --- Routes ---

	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	docs.Mount(r)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Games
		r.Get("/boxscores/{date}/{team1}/{team2}", h.GetBoxScores)
		r.Get("/allstar/{year}", h.GetAllStarBoxScore)
		r.Get("/schedule/{season}", h.GetSchedule)

		// Teams
		r.Get("/teams/{season}", h.GetTeams)
		r.Route("/teams/{team}/{season}", func(r chi.Router) {
			r.Get("/roster", h.GetRoster)
			r.Get("/stats", h.GetTeamStats)
			r.Get("/opponent", h.GetOpponentStats)
			r.Get("/misc", h.GetTeamMisc)
			r.Get("/roster-stats", h.GetRosterStats)
		})

		// League
		r.Get("/injuries", h.GetInjuryReport)
		r.Get("/ratings/{season}", h.GetTeamRatings)
		r.Get("/standings/{season}", h.GetStandings)
		r.Get("/draft/{year}", h.GetDraftClass)

		// Players
		r.Get("/players/seasons", h.GetPlayerSeasons)

		// Stored tables
		r.Get("/stored/{category}/{entity}/seasons", h.GetStoredSeasons)
		r.Get("/stored/{category}/{entity}/{season}", h.GetStoredTable)
		r.Get("/seeds/{kind}/latest", h.GetLastSeedRun)
	})

	return r
}
