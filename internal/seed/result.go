// Package seed persists extracted tables: one upsert per table keyed by
// category, entity, season and variant, plus a record of every run.
package seed

import (
	"fmt"
	"time"
)

// Result tracks counts and errors from a seeding operation.
type Result struct {
	TablesUpserted int
	RowsUpserted   int
	Errors         []string
	Duration       time.Duration
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.TablesUpserted += other.TablesUpserted
	r.RowsUpserted += other.RowsUpserted
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"tables=%d rows=%d errors=%d duration=%s",
		r.TablesUpserted, r.RowsUpserted, len(r.Errors), r.Duration.Round(time.Millisecond),
	)
}
