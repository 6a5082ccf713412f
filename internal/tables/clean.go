package tables

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// Span says which rows a matched sentinel removes.
type Span int

const (
	// SpanRow removes only the matched row.
	SpanRow Span = iota
	// SpanFollowing removes the matched row and every row after it.
	SpanFollowing
	// SpanPreceding removes the matched row and every row before it.
	SpanPreceding
	// SpanBefore removes every row before the matched row, keeping it.
	SpanBefore
)

// Sentinel identifies a non-data row by the content of one of its cells.
type Sentinel struct {
	// Column is the header label tested; "" means the first cell.
	Column string
	// Match receives the cell text and that column's header label.
	Match func(cell, label string) bool
	// Mandatory sentinels must match at least once.
	Mandatory bool
	// Every removes all matching rows instead of only the first.
	Every bool
	Span  Span
	// Name is used in error messages.
	Name string
}

// Equals matches rows whose first cell is exactly text.
func Equals(text string) Sentinel {
	return ColumnEquals("", text)
}

// ColumnEquals matches rows whose cell in column is exactly text.
func ColumnEquals(column, text string) Sentinel {
	return Sentinel{
		Column: column,
		Match:  func(cell, _ string) bool { return cell == text },
		Name:   fmt.Sprintf("%q", text),
	}
}

// RepeatedHeader matches every row that repeats the column labels, as long
// scrolling tables do every twenty rows.
func RepeatedHeader() Sentinel {
	return Sentinel{
		Match: func(cell, label string) bool { return cell == label },
		Every: true,
		Name:  "repeated header",
	}
}

// Blank matches every row whose cell in column is empty.
func Blank(column string) Sentinel {
	return Sentinel{
		Column: column,
		Match:  func(cell, _ string) bool { return cell == "" },
		Every:  true,
		Name:   "blank " + column,
	}
}

// Required returns a copy of s that must match.
func (s Sentinel) Required() Sentinel {
	s.Mandatory = true
	return s
}

// All returns a copy of s that removes every matching row.
func (s Sentinel) All() Sentinel {
	s.Every = true
	return s
}

// Through returns a copy of s with the given span.
func (s Sentinel) Through(span Span) Sentinel {
	s.Span = span
	return s
}

// CleanOptions configures Clean.
type CleanOptions struct {
	// HeaderLevelsToDrop discards leading (outermost) header rows.
	HeaderLevelsToDrop int
	Sentinels          []Sentinel
	// DropAfterSentinel widens SpanRow sentinels to SpanFollowing.
	DropAfterSentinel bool
	// TrailingRowsToDrop removes rows from the end after sentinel removal.
	TrailingRowsToDrop int
}

// Clean flattens a table's headers and removes sentinel rows.
//
// Headers are reduced to the innermost remaining level. Each sentinel is
// tested against every row in order; matched rows (and the rows their span
// covers) are removed and the rest keep their original order. The result
// shares no slices with the input.
//
// Cleaning a Cleaned table removes no further rows for the same options.
func Clean(raw RawTable, opts CleanOptions) (RawTable, error) {
	if len(raw.Headers) == 0 {
		return RawTable{}, fmt.Errorf("%w: table has no header", provider.ErrMalformedTable)
	}
	if opts.HeaderLevelsToDrop < 0 || (!raw.Cleaned && opts.HeaderLevelsToDrop >= len(raw.Headers)) {
		return RawTable{}, fmt.Errorf("%w: cannot drop %d of %d header levels",
			provider.ErrMalformedTable, opts.HeaderLevelsToDrop, len(raw.Headers))
	}

	inner := raw.Headers[len(raw.Headers)-1]
	flat := RawTable{
		Headers: [][]string{append([]string(nil), inner...)},
		Keys:    append([]string(nil), raw.Keys...),
		Cleaned: true,
	}
	labels := flat.Header()

	drop := make([]bool, len(raw.Rows))
	for _, s := range opts.Sentinels {
		col := 0
		if s.Column != "" {
			if col = flat.ColumnIndex(s.Column); col < 0 {
				return RawTable{}, fmt.Errorf("%w: sentinel column %q not in header %q",
					provider.ErrMalformedTable, s.Column, labels)
			}
		}
		span := s.Span
		if span == SpanRow && opts.DropAfterSentinel {
			span = SpanFollowing
		}

		matched := false
		for i, row := range raw.Rows {
			if col >= len(row) || !s.Match(row[col], labels[col]) {
				continue
			}
			matched = true
			switch span {
			case SpanFollowing:
				for j := i; j < len(drop); j++ {
					drop[j] = true
				}
			case SpanPreceding:
				for j := 0; j <= i; j++ {
					drop[j] = true
				}
			case SpanBefore:
				for j := 0; j < i; j++ {
					drop[j] = true
				}
			default:
				drop[i] = true
			}
			if !s.Every {
				break
			}
		}
		if s.Mandatory && !matched && !raw.Cleaned {
			return RawTable{}, fmt.Errorf("%w: mandatory sentinel %s matched no row",
				provider.ErrMalformedTable, s.Name)
		}
	}

	for i, row := range raw.Rows {
		if drop[i] {
			continue
		}
		if len(row) != len(inner) {
			return RawTable{}, fmt.Errorf("%w: row %d has %d cells, header has %d",
				provider.ErrMalformedTable, i, len(row), len(inner))
		}
		flat.Rows = append(flat.Rows, append([]string(nil), row...))
	}

	if n := opts.TrailingRowsToDrop; n > 0 && !raw.Cleaned {
		if n > len(flat.Rows) {
			return RawTable{}, fmt.Errorf("%w: cannot drop %d trailing rows of %d",
				provider.ErrMalformedTable, n, len(flat.Rows))
		}
		flat.Rows = flat.Rows[:len(flat.Rows)-n]
	}
	return flat, nil
}

// CleanNode extracts and cleans a located table node.
func CleanNode(table *goquery.Selection, opts CleanOptions) (RawTable, error) {
	raw, err := Extract(table)
	if err != nil {
		return RawTable{}, err
	}
	return Clean(raw, opts)
}
