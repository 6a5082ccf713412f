package tables

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-tables/internal/names"
)

// Anchors returns the links under node whose href matches pattern, in
// document order. A nil pattern returns every link.
func Anchors(node *goquery.Selection, pattern *regexp.Regexp) []names.Anchor {
	var out []names.Anchor
	node.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if pattern != nil && !pattern.MatchString(href) {
			return
		}
		out = append(out, names.Anchor{Text: normalizeWhitespace(a.Text()), Href: href})
	})
	return out
}

// Texts returns the whitespace-normalized text of each node matched by a CSS
// selector, in document order.
func Texts(doc *Document, css string) []string {
	var out []string
	doc.Find(css).Each(func(_ int, s *goquery.Selection) {
		out = append(out, normalizeWhitespace(s.Text()))
	})
	return out
}
