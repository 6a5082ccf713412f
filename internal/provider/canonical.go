// Package provider defines the canonical data types every extraction
// normalizes into. These types are the contract between the site handler and
// its consumers (CLI, API, seeder): the handler outputs them, consumers
// serialize or persist them.
//
// Adding a new category means declaring a schema that produces these types.
// Consumers never change.
package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind tags the concrete type held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindInt
	KindFloat
	KindDate
	KindIdentifier
)

// DateLayout is the canonical calendar date encoding.
const DateLayout = "2006-01-02"

// Value is a single typed cell of a canonical record.
// The zero Value is Absent: an explicit "no value" marker, never a placeholder string.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Date  time.Time
}

// Absent returns the explicit missing-value marker.
func Absent() Value { return Value{} }

// String wraps a string cell.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int wraps an integer cell.
func Int(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Float wraps a floating point cell.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Date wraps a calendar date (time of day is discarded).
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Identifier wraps a stable site identifier (e.g. "curryst01").
func Identifier(id string) Value { return Value{Kind: KindIdentifier, Str: id} }

// IsAbsent reports whether the value is the missing marker.
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// Text renders the value as display text. Absent renders as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindIdentifier:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindAbsent:
		return true
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	default:
		return v.Str == o.Str
	}
}

// MarshalJSON encodes Absent as null and dates as YYYY-MM-DD.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	default:
		return json.Marshal(v.Text())
	}
}

func (v Value) String() string {
	if v.IsAbsent() {
		return "<absent>"
	}
	return v.Text()
}

// Record maps canonical column name to value.
type Record map[string]Value

// Get returns the value for column, Absent when missing.
func (r Record) Get(column string) Value {
	return r[column]
}

// Table is an ordered sequence of records sharing one column set.
// Columns carries the column order; every record has exactly those keys.
type Table struct {
	Category string   `json:"category"`
	Columns  []string `json:"columns"`
	Records  []Record `json:"-"`
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// Column returns one column's values in record order.
func (t Table) Column(name string) []Value {
	out := make([]Value, len(t.Records))
	for i, r := range t.Records {
		out[i] = r[name]
	}
	return out
}

// Find returns the index of the first record whose column equals text, or -1.
func (t Table) Find(column, text string) int {
	for i, r := range t.Records {
		if v, ok := r[column]; ok && !v.IsAbsent() && v.Text() == text {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose record slice and records can be appended to or
// edited without touching t.
func (t Table) Clone() Table {
	out := Table{
		Category: t.Category,
		Columns:  append([]string(nil), t.Columns...),
		Records:  make([]Record, len(t.Records)),
	}
	for i, r := range t.Records {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Records[i] = cp
	}
	return out
}

// Append adds a record, filling every column it does not set with Absent.
func (t *Table) Append(r Record) {
	row := make(Record, len(t.Columns))
	for _, c := range t.Columns {
		row[c] = r[c]
	}
	t.Records = append(t.Records, row)
}

// MarshalJSON emits columns plus rows as positional arrays so column order
// survives serialization.
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([][]Value, len(t.Records))
	for i, r := range t.Records {
		row := make([]Value, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		rows[i] = row
	}
	return json.Marshal(struct {
		Category string    `json:"category"`
		Columns  []string  `json:"columns"`
		Rows     [][]Value `json:"rows"`
	}{t.Category, t.Columns, rows})
}

// SeasonLabel formats a season end year the way the site does: 2019 → "2018-19".
func SeasonLabel(endYear int) string {
	return fmt.Sprintf("%d-%02d", endYear-1, endYear%100)
}

// SeasonEndYear returns the end year of the season a game date belongs to.
// Seasons start in the autumn, so August onwards counts toward the next year.
func SeasonEndYear(d time.Time) int {
	if d.Month() >= time.August {
		return d.Year() + 1
	}
	return d.Year()
}
