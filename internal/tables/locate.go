package tables

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/albapepper/bbref-tables/internal/provider"
)

type selectorKind int

const (
	byID selectorKind = iota
	byOrdinal
	byXPath
)

// Selector names the table(s) to locate. Each selector carries the number of
// matches it expects.
type Selector struct {
	kind  selectorKind
	expr  string
	start int
	end   int
}

// ByID selects the table with the given element id.
func ByID(id string) Selector {
	return Selector{kind: byID, expr: id}
}

// ByTemplate expands {team} and {period} in template and selects by the
// resulting id, e.g. ByTemplate("box-{team}-{period}-basic", "BOS", "q1").
func ByTemplate(template, team, period string) Selector {
	id := strings.NewReplacer("{team}", team, "{period}", period).Replace(template)
	return ByID(id)
}

// ByOrdinal selects tables [start, end) in document order, counting only
// tables present in the served markup. Commented tables are not counted.
func ByOrdinal(start, end int) Selector {
	return Selector{kind: byOrdinal, start: start, end: end}
}

// First selects the first table on the page.
func First() Selector {
	return ByOrdinal(0, 1)
}

// ByXPath selects the single table matched by an XPath expression.
func ByXPath(expr string) Selector {
	return Selector{kind: byXPath, expr: expr}
}

// Want returns the number of tables the selector must resolve to.
func (s Selector) Want() int {
	if s.kind == byOrdinal {
		return s.end - s.start
	}
	return 1
}

func (s Selector) String() string {
	switch s.kind {
	case byOrdinal:
		return fmt.Sprintf("table[%d:%d]", s.start, s.end)
	case byXPath:
		return "xpath:" + s.expr
	default:
		return "#" + s.expr
	}
}

// Locate resolves a selector against a document.
//
// Zero matches (or fewer than an ordinal slice spans) is ErrNotFound: it
// usually means the page has a different shape, e.g. a game without the
// requested period or a season before a category existed. More matches than
// expected is ErrMalformedTable.
func Locate(doc *Document, sel Selector) ([]*goquery.Selection, error) {
	if sel.kind == byOrdinal && (sel.start < 0 || sel.end <= sel.start) {
		return nil, fmt.Errorf("%w: bad ordinal range %s", provider.ErrInvalidArgument, sel)
	}

	var found *goquery.Selection
	switch sel.kind {
	case byID:
		found = doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
			id, _ := s.Attr("id")
			return id == sel.expr
		})
	case byXPath:
		nodes, err := htmlquery.QueryAll(doc.Root(), sel.expr)
		if err != nil {
			return nil, fmt.Errorf("%w: xpath %q: %v", provider.ErrInvalidArgument, sel.expr, err)
		}
		found = doc.Selection.FindNodes(nodes...).Filter("table")
	case byOrdinal:
		all := doc.Find("table").Not("[" + CommentedAttr + "]")
		if all.Length() < sel.end {
			return nil, fmt.Errorf("%w: %s (page has %d tables)", provider.ErrNotFound, sel, all.Length())
		}
		found = all.Slice(sel.start, sel.end)
	}

	switch n := found.Length(); {
	case n == 0:
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, sel)
	case n > sel.Want():
		return nil, fmt.Errorf("%w: %s matched %d tables, want %d", provider.ErrMalformedTable, sel, n, sel.Want())
	}

	out := make([]*goquery.Selection, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out, nil
}

// LocateOne resolves a single-table selector.
func LocateOne(doc *Document, sel Selector) (*goquery.Selection, error) {
	found, err := Locate(doc, sel)
	if err != nil {
		return nil, err
	}
	return found[0], nil
}
