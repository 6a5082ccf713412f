package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// RawTable is a grid of cell text as it appears in the page.
//
// Headers holds one or more header rows, outermost first. Keys holds the
// machine name the site attaches to each innermost header cell (its
// data-stat attribute), "" where none. Rows are in document order.
//
// Cleaned marks a table produced by Clean. Its header is already flat and
// the one-time steps (header drop, mandatory sentinels, trailing rows) have
// run, so cleaning it again only re-tests sentinel rows.
type RawTable struct {
	Headers [][]string
	Keys    []string
	Rows    [][]string
	Cleaned bool
}

// Width returns the column count of the innermost header row.
func (t RawTable) Width() int {
	if len(t.Headers) == 0 {
		return 0
	}
	return len(t.Headers[len(t.Headers)-1])
}

// Header returns unique column labels from the innermost header row.
// Blank labels become "Unnamed: i" and repeats get a ".n" suffix, so two
// "PTS" columns read "PTS" and "PTS.1".
func (t RawTable) Header() []string {
	if len(t.Headers) == 0 {
		return nil
	}
	inner := t.Headers[len(t.Headers)-1]
	out := make([]string, len(inner))
	seen := make(map[string]int, len(inner))
	for i, label := range inner {
		if label == "" {
			label = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[label]; dup {
			seen[label] = n + 1
			out[i] = label + "." + strconv.Itoa(n+1)
			continue
		}
		seen[label] = 0
		out[i] = label
	}
	return out
}

// ColumnIndex returns the position of a label from Header(), or -1.
func (t RawTable) ColumnIndex(label string) int {
	for i, h := range t.Header() {
		if h == label {
			return i
		}
	}
	return -1
}

// Extract reads a table node into a RawTable.
//
// Header rows come from thead; body rows from tbody followed by tfoot (or
// every non-header row when the table has no tbody). Cells spanning several
// columns are repeated across the span so rows stay rectangular.
func Extract(table *goquery.Selection) (RawTable, error) {
	if table == nil || table.Length() == 0 {
		return RawTable{}, fmt.Errorf("%w: nil table node", provider.ErrNotFound)
	}

	var raw RawTable
	table.Find("thead > tr").Each(func(_ int, tr *goquery.Selection) {
		cells, keys := rowCells(tr)
		raw.Headers = append(raw.Headers, cells)
		raw.Keys = keys
	})

	body := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	body = body.AddSelection(table.ChildrenFiltered("tfoot").ChildrenFiltered("tr"))
	if table.ChildrenFiltered("tbody").Length() == 0 {
		body = table.Find("tr").NotSelection(table.Find("thead > tr"))
	}

	body.Each(func(_ int, tr *goquery.Selection) {
		cells, _ := rowCells(tr)
		if len(cells) > 0 {
			raw.Rows = append(raw.Rows, cells)
		}
	})

	// Tables without a thead carry their labels in the first row.
	if len(raw.Headers) == 0 {
		if len(raw.Rows) == 0 {
			return RawTable{}, fmt.Errorf("%w: table has no rows", provider.ErrMalformedTable)
		}
		raw.Headers = [][]string{raw.Rows[0]}
		raw.Keys = make([]string, len(raw.Rows[0]))
		raw.Rows = raw.Rows[1:]
	}
	return raw, nil
}

func rowCells(tr *goquery.Selection) (cells, keys []string) {
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := normalizeWhitespace(cell.Text())
		key := cell.AttrOr("data-stat", "")
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			cells = append(cells, text)
			keys = append(keys, key)
		}
	})
	return cells, keys
}

// normalizeWhitespace collapses runs of whitespace (including nbsp) into one space.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Concat joins tables that share the same innermost header, e.g. the monthly
// pages of one schedule. Row order follows argument order.
func Concat(parts ...RawTable) (RawTable, error) {
	if len(parts) == 0 {
		return RawTable{}, fmt.Errorf("%w: nothing to concatenate", provider.ErrNotFound)
	}
	out := RawTable{
		Headers: parts[0].Headers,
		Keys:    parts[0].Keys,
	}
	want := strings.Join(parts[0].Header(), "\x00")
	for i, p := range parts {
		if got := strings.Join(p.Header(), "\x00"); got != want {
			return RawTable{}, fmt.Errorf("%w: part %d header %q differs from %q",
				provider.ErrMalformedTable, i, p.Header(), parts[0].Header())
		}
		out.Rows = append(out.Rows, p.Rows...)
	}
	return out, nil
}
