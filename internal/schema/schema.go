// Package schema maps cleaned tables onto the canonical column vocabulary of
// each data category.
//
// A CategorySchema is a static value: which rows are noise, how source labels
// are renamed, which columns carry team names, which compound cells split
// into several columns and what type each column holds. Map applies one
// schema to one RawTable and produces a new provider.Table; rows keep their
// source order.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// ColumnType selects how a cell's text becomes a provider.Value.
type ColumnType uint8

const (
	TypeString ColumnType = iota
	// TypeAuto stores integers as Int, other numbers as Float and anything
	// else as String. Used for stat columns whose precision varies by format.
	TypeAuto
	TypeInt
	TypeFloat
	TypeDate
	TypeIdentifier
)

// Derivation splits one source column into several canonical columns.
// Targets replace Source in column order; Source may appear among them.
type Derivation struct {
	Source  string
	Targets []string
	Split   func(cell string) ([]string, error)
}

// Filter keeps a row when it returns true. It sees renamed, transformed
// cell text keyed by canonical column.
type Filter func(row map[string]string) bool

// CategorySchema describes one data category.
type CategorySchema struct {
	Category string
	// Clean removes structural noise before mapping.
	Clean tables.CleanOptions
	// Renames maps a source label (or its data-stat key) to a canonical name.
	Renames map[string]string
	// Positional, when set, names every column by position.
	Positional []string
	// Uppercase upper-cases labels that are not renamed.
	Uppercase bool
	// Drop lists columns removed after renaming.
	Drop []string
	// Fixed is the exact output column set and order. Nil passes columns
	// through in source order.
	Fixed []string
	// Optional members of Fixed may be missing from the page; they map to
	// Absent.
	Optional []string
	// Transforms rewrite cell text per column before filtering.
	Transforms map[string]func(string) string
	Filters    []Filter
	Derived    []Derivation
	// TeamColumns hold team names or abbreviations, converted through TeamAbbr.
	TeamColumns []string
	Types       map[string]ColumnType
	DefaultType ColumnType
	// Placeholders are cell prefixes that mean "no value" in non-string
	// columns, such as "Did Not Play" spread across a box-score row.
	Placeholders []string
	// Key is the primary entity column.
	Key string
}

// Option adjusts a single Map call with page-scoped data.
type Option func(*mapping)

type constant struct {
	column string
	at     int
	value  string
}

type mapping struct {
	ids        names.IdentifierMap
	normalizer *names.Normalizer
	team       string
	season     int
	constants  []constant
}

// IDColumn holds identifiers resolved through WithIdentifiers.
const IDColumn = "PLAYER_ID"

// WithIdentifiers fills IDColumn from the key column using a page's
// identifier map. Names without a link map to Absent.
func WithIdentifiers(ids names.IdentifierMap) Option {
	return func(m *mapping) { m.ids = ids }
}

// WithNormalizer folds key column names for one team's season. Identifiers
// are resolved before normalization, against the names as displayed.
func WithNormalizer(n *names.Normalizer, team string, season int) Option {
	return func(m *mapping) {
		m.normalizer = n
		m.team = team
		m.season = season
	}
}

// WithConstant adds a column holding value on every row, inserted at
// position at when columns pass through.
func WithConstant(column string, at int, value string) Option {
	return func(m *mapping) {
		m.constants = append(m.constants, constant{column, at, value})
	}
}

// Map converts a cleaned RawTable into canonical records.
func Map(raw tables.RawTable, s CategorySchema, opts ...Option) (provider.Table, error) {
	var m mapping
	for _, o := range opts {
		o(&m)
	}

	cols, srcIdx, err := s.sourceColumns(raw)
	if err != nil {
		return provider.Table{}, err
	}
	order, err := s.outputOrder(cols, &m)
	if err != nil {
		return provider.Table{}, err
	}

	rows := make([]map[string]string, 0, len(raw.Rows))
	for i, r := range raw.Rows {
		if len(r) != raw.Width() {
			return provider.Table{}, fmt.Errorf("%w: %s row %d has %d cells, header has %d",
				provider.ErrMalformedTable, s.Category, i, len(r), raw.Width())
		}
		cells := make(map[string]string, len(order))
		for j, c := range cols {
			cells[c] = r[srcIdx[j]]
		}
		for c, fn := range s.Transforms {
			if v, ok := cells[c]; ok {
				cells[c] = fn(v)
			}
		}
		if !s.keep(cells) {
			continue
		}
		for _, d := range s.Derived {
			parts, err := d.Split(cells[d.Source])
			if err != nil {
				return provider.Table{}, fmt.Errorf("%s row %d column %s: %w", s.Category, i, d.Source, err)
			}
			if len(parts) != len(d.Targets) {
				return provider.Table{}, fmt.Errorf("%w: %s row %d column %s split into %d parts, want %d",
					provider.ErrMalformedField, s.Category, i, d.Source, len(parts), len(d.Targets))
			}
			for k, t := range d.Targets {
				cells[t] = parts[k]
			}
		}
		for _, c := range m.constants {
			cells[c.column] = c.value
		}
		if m.ids != nil {
			id, _ := m.ids.Lookup(cells[s.Key])
			cells[IDColumn] = id
		}
		rows = append(rows, cells)
	}

	if m.normalizer != nil && s.Key != "" {
		roster := make([]string, len(rows))
		for i, r := range rows {
			roster[i] = r[s.Key]
		}
		for i, r := range rows {
			r[s.Key] = m.normalizer.Normalize(roster[i], m.team, m.season, roster)
		}
	}

	out := provider.Table{Category: s.Category, Columns: order, Records: make([]provider.Record, 0, len(rows))}
	for i, cells := range rows {
		rec := make(provider.Record, len(order))
		for _, c := range order {
			text, ok := cells[c]
			if !ok {
				rec[c] = provider.Absent()
				continue
			}
			v, err := s.convert(c, text)
			if err != nil {
				return provider.Table{}, fmt.Errorf("%s row %d: %w", s.Category, i, err)
			}
			rec[c] = v
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// sourceColumns returns the canonical name of every kept source column and
// its index in the raw row.
func (s CategorySchema) sourceColumns(raw tables.RawTable) ([]string, []int, error) {
	header := raw.Header()
	if len(s.Positional) > 0 && len(s.Positional) != len(header) {
		return nil, nil, fmt.Errorf("%w: %s expects %d columns, table has %d %q",
			provider.ErrMalformedTable, s.Category, len(s.Positional), len(header), header)
	}

	var cols []string
	var idx []int
	seen := make(map[string]bool, len(header))
	for i, label := range header {
		name := s.rename(i, label, raw.Keys)
		if slices.Contains(s.Drop, name) {
			continue
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("%w: %s column %q appears twice", provider.ErrMalformedTable, s.Category, name)
		}
		seen[name] = true
		cols = append(cols, name)
		idx = append(idx, i)
	}
	return cols, idx, nil
}

func (s CategorySchema) rename(i int, label string, keys []string) string {
	if len(s.Positional) > 0 {
		return s.Positional[i]
	}
	if r, ok := s.Renames[label]; ok {
		return r
	}
	if i < len(keys) && keys[i] != "" {
		if r, ok := s.Renames[keys[i]]; ok {
			return r
		}
	}
	if s.Uppercase {
		return strings.ToUpper(label)
	}
	return label
}

// outputOrder computes the final column order and validates it against Fixed.
func (s CategorySchema) outputOrder(cols []string, m *mapping) ([]string, error) {
	order := append([]string(nil), cols...)
	for _, d := range s.Derived {
		at := slices.Index(order, d.Source)
		if at < 0 {
			return nil, fmt.Errorf("%w: %s has no %s column to split", provider.ErrMalformedTable, s.Category, d.Source)
		}
		targets := slices.DeleteFunc(slices.Clone(d.Targets), func(t string) bool {
			return t != d.Source && slices.Contains(order, t)
		})
		order = slices.Replace(order, at, at+1, targets...)
	}
	for _, c := range m.constants {
		if slices.Contains(order, c.column) {
			continue
		}
		at := min(max(c.at, 0), len(order))
		order = slices.Insert(order, at, c.column)
	}
	if m.ids != nil && !slices.Contains(order, IDColumn) {
		order = append(order, IDColumn)
	}
	if (m.ids != nil || m.normalizer != nil) && !slices.Contains(order, s.Key) {
		return nil, fmt.Errorf("%w: %s has no key column %q", provider.ErrMalformedTable, s.Category, s.Key)
	}

	if s.Fixed == nil {
		return order, nil
	}
	for _, c := range order {
		if !slices.Contains(s.Fixed, c) {
			return nil, fmt.Errorf("%w: %s has unexpected column %q", provider.ErrMalformedTable, s.Category, c)
		}
	}
	for _, c := range s.Fixed {
		if !slices.Contains(order, c) && !slices.Contains(s.Optional, c) {
			return nil, fmt.Errorf("%w: %s is missing column %q", provider.ErrMalformedTable, s.Category, c)
		}
	}
	return slices.Clone(s.Fixed), nil
}

func (s CategorySchema) keep(row map[string]string) bool {
	for _, f := range s.Filters {
		if !f(row) {
			return false
		}
	}
	return true
}

func (s CategorySchema) placeholder(cell string) bool {
	for _, p := range s.Placeholders {
		if strings.HasPrefix(cell, p) {
			return true
		}
	}
	return false
}

func (s CategorySchema) typeOf(column string) ColumnType {
	if t, ok := s.Types[column]; ok {
		return t
	}
	if column == IDColumn {
		return TypeIdentifier
	}
	return s.DefaultType
}

func (s CategorySchema) convert(column, cell string) (provider.Value, error) {
	cell = strings.TrimSpace(cell)
	if slices.Contains(s.TeamColumns, column) {
		if cell == "" {
			return provider.Absent(), nil
		}
		abbr, err := TeamAbbr(cell)
		if err != nil {
			return provider.Value{}, fmt.Errorf("column %s: %w", column, err)
		}
		return provider.String(abbr), nil
	}

	t := s.typeOf(column)
	if t != TypeString && s.placeholder(cell) {
		return provider.Absent(), nil
	}
	switch t {
	case TypeAuto:
		return autoValue(cell), nil
	case TypeInt:
		v, ok := provider.ExtractInt(cell)
		if !ok {
			return provider.Value{}, fmt.Errorf("%w: column %s: %q is not an integer", provider.ErrMalformedField, column, cell)
		}
		return v, nil
	case TypeFloat:
		v, ok := provider.ExtractFloat(strings.TrimSuffix(cell, "%"))
		if !ok {
			return provider.Value{}, fmt.Errorf("%w: column %s: %q is not a number", provider.ErrMalformedField, column, cell)
		}
		return v, nil
	case TypeDate:
		if provider.IsBlank(cell) {
			return provider.Absent(), nil
		}
		d, err := ParseDate(cell)
		if err != nil {
			return provider.Value{}, fmt.Errorf("column %s: %w", column, err)
		}
		return provider.Date(d), nil
	case TypeIdentifier:
		if cell == "" {
			return provider.Absent(), nil
		}
		return provider.Identifier(cell), nil
	default:
		return provider.ExtractString(cell), nil
	}
}

// autoValue never fails: numeric text becomes a number, other text stays a
// string. Percent signs are dropped ("+1.2%" → 1.2).
func autoValue(cell string) provider.Value {
	if v, ok := provider.ExtractInt(cell); ok {
		return v
	}
	if v, ok := provider.ExtractFloat(strings.TrimSuffix(cell, "%")); ok {
		return v
	}
	return provider.String(cell)
}

// PickRow returns the single record whose labelColumn equals label, with
// labelColumn removed. Used for tables whose rows are labeled splits, such as
// "Team", "Team/G" and "Lg Rank".
func PickRow(t provider.Table, labelColumn, label string) (provider.Table, error) {
	i := t.Find(labelColumn, label)
	if i < 0 {
		return provider.Table{}, fmt.Errorf("%w: %s has no %q row", provider.ErrNotFound, t.Category, label)
	}
	out := provider.Table{Category: t.Category}
	for _, c := range t.Columns {
		if c != labelColumn {
			out.Columns = append(out.Columns, c)
		}
	}
	out.Append(t.Records[i])
	return out, nil
}

// FilterRows returns the records whose column value is one of values, in
// order. An empty values list returns a copy of t.
func FilterRows(t provider.Table, column string, values ...string) provider.Table {
	out := provider.Table{Category: t.Category, Columns: slices.Clone(t.Columns)}
	for _, r := range t.Records {
		if len(values) == 0 || slices.Contains(values, r.Get(column).Text()) {
			out.Append(r)
		}
	}
	return out
}

// NonBlank keeps rows whose columns all carry a value.
func NonBlank(columns ...string) Filter {
	return func(row map[string]string) bool {
		for _, c := range columns {
			if provider.IsBlank(row[c]) {
				return false
			}
		}
		return true
	}
}

// Complete keeps rows with no blank cell at all.
func Complete() Filter {
	return func(row map[string]string) bool {
		for _, v := range row {
			if provider.IsBlank(v) {
				return false
			}
		}
		return true
	}
}
