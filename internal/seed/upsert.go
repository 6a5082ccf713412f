package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// DB is the subset of pgxpool.Pool the seeder needs. Statement names refer
// to the statements db.New prepares on every connection.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Key identifies one stored table.
type Key struct {
	Category string
	Entity   string // team abbreviation, or "NBA" for league-wide tables
	Season   int
	Variant  string // format, conference or REGULAR/PLAYOFFS; empty when the category has one shape
}

func (k Key) String() string {
	s := fmt.Sprintf("%s/%s/%d", k.Category, k.Entity, k.Season)
	if k.Variant != "" {
		s += "/" + k.Variant
	}
	return s
}

// UpsertTable writes a table's columns and records as JSONB, replacing any
// earlier copy under the same key.
func UpsertTable(ctx context.Context, db DB, key Key, t provider.Table) error {
	columns, err := json.Marshal(nonNil(t.Columns))
	if err != nil {
		return fmt.Errorf("encode columns %s: %w", key, err)
	}
	records, err := json.Marshal(nonNil(t.Records))
	if err != nil {
		return fmt.Errorf("encode records %s: %w", key, err)
	}
	if _, err := db.Exec(ctx, "upsert_extracted_table",
		key.Category, key.Entity, key.Season, key.Variant, columns, records, t.Len(),
	); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// recordRun stores a finished run's counts and errors in seed_runs.
func recordRun(ctx context.Context, db DB, kind string, season int, started time.Time, r Result) error {
	errs, err := json.Marshal(nonNil(r.Errors))
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}
	if _, err := db.Exec(ctx, "record_seed_run",
		kind, season, r.TablesUpserted, r.RowsUpserted, errs, started,
	); err != nil {
		return fmt.Errorf("record seed run: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
