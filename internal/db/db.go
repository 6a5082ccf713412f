// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema bootstrap and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/bbref-tables/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Tables must exist before statements referencing them can be prepared.
	conn, err := pgx.ConnectConfig(ctx, poolCfg.ConnConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	err = EnsureSchema(ctx, conn)
	conn.Close(ctx)
	if err != nil {
		return nil, err
	}

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// schema is idempotent; it runs on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.ExtractedTablesTable + ` (
		category   TEXT        NOT NULL,
		entity     TEXT        NOT NULL,
		season     INTEGER     NOT NULL,
		variant    TEXT        NOT NULL DEFAULT '',
		columns    JSONB       NOT NULL,
		records    JSONB       NOT NULL,
		row_count  INTEGER     NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (category, entity, season, variant)
	)`,
	`CREATE INDEX IF NOT EXISTS extracted_tables_season_idx ON ` + config.ExtractedTablesTable + ` (season, category)`,
	`CREATE TABLE IF NOT EXISTS ` + config.SeedRunsTable + ` (
		id              BIGSERIAL   PRIMARY KEY,
		kind            TEXT        NOT NULL,
		season          INTEGER     NOT NULL,
		tables_upserted INTEGER     NOT NULL,
		rows_upserted   INTEGER     NOT NULL,
		errors          JSONB       NOT NULL,
		started_at      TIMESTAMPTZ NOT NULL,
		finished_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the extraction tables when missing.
func EnsureSchema(ctx context.Context, conn *pgx.Conn) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the API and seeding
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Seeding
		"upsert_extracted_table": `INSERT INTO ` + config.ExtractedTablesTable + ` (category, entity, season, variant, columns, records, row_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (category, entity, season, variant) DO UPDATE SET
				columns = EXCLUDED.columns,
				records = EXCLUDED.records,
				row_count = EXCLUDED.row_count,
				fetched_at = NOW()`,
		"record_seed_run": `INSERT INTO ` + config.SeedRunsTable + ` (kind, season, tables_upserted, rows_upserted, errors, started_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,

		// API: stored tables (Postgres returns complete JSON)
		"stored_table": `SELECT json_build_object(
				'category', category, 'entity', entity, 'season', season, 'variant', variant,
				'columns', columns, 'rows', records, 'fetched_at', fetched_at)
			FROM ` + config.ExtractedTablesTable + `
			WHERE category = $1 AND entity = $2 AND season = $3 AND variant = $4`,
		"stored_seasons": `SELECT COALESCE(json_agg(DISTINCT season ORDER BY season DESC), '[]'::json)
			FROM ` + config.ExtractedTablesTable + ` WHERE category = $1 AND entity = $2`,
		"last_seed_run": `SELECT row_to_json(r) FROM (
				SELECT kind, season, tables_upserted, rows_upserted, errors, started_at, finished_at
				FROM ` + config.SeedRunsTable + ` WHERE kind = $1 ORDER BY finished_at DESC LIMIT 1) r`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
