// Package tables locates HTML tables inside a parsed page and reduces them to
// rectangular grids of cell text.
//
// The pipeline is a chain of values: a located table node is extracted into a
// RawTable, and Clean turns one RawTable into a new one with header levels
// flattened and sentinel rows removed. Nothing here mutates its input.
//
// Built on:
//   - goquery: CSS selection and node traversal
//   - htmlquery: XPath selectors
//   - x/net/html/charset + chardet: decoding pages that arrive in legacy charsets
package tables

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxDocumentSize bounds a single page to 16MB.
const MaxDocumentSize = 16 * 1024 * 1024

// CommentedAttr marks tables that were inside an HTML comment in the served
// markup. The site ships secondary tables in comments and reveals them with
// script.
const CommentedAttr = "data-commented"

// Document is a parsed page.
type Document struct {
	*goquery.Document
}

// Parse decodes raw page bytes and builds a document.
// contentType is the response Content-Type header and may be empty.
func Parse(raw []byte, contentType string) (*Document, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("parse document: empty body")
	}
	if len(raw) > MaxDocumentSize {
		return nil, fmt.Errorf("parse document: %d bytes exceeds limit of %d", len(raw), MaxDocumentSize)
	}

	r, err := decode(raw, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(revealComments(string(text))))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{Document: doc}, nil
}

// revealComments removes comment delimiters so commented tables become
// ordinary nodes, tagging each such table with CommentedAttr.
func revealComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for s != "" {
		open := strings.Index(s, "<!--")
		if open < 0 {
			b.WriteString(strings.ReplaceAll(s, "-->", ""))
			break
		}
		b.WriteString(strings.ReplaceAll(s[:open], "-->", ""))
		s = s[open+len("<!--"):]

		end := strings.Index(s, "-->")
		if end < 0 {
			end = len(s)
		}
		b.WriteString(strings.ReplaceAll(s[:end], "<table", "<table "+CommentedAttr))
		s = s[min(end+len("-->"), len(s)):]
	}
	return b.String()
}

// ParseString parses an already decoded HTML fragment or page.
func ParseString(markup string) (*Document, error) {
	return Parse([]byte(markup), "text/html; charset=utf-8")
}

// Root returns the document node for XPath evaluation.
func (d *Document) Root() *html.Node {
	return d.Nodes[0]
}

// decode picks the page encoding: an explicit Content-Type charset wins,
// then in-document declarations; chardet is consulted only for bytes that
// are not valid UTF-8 and carry no declaration.
func decode(raw []byte, contentType string) (io.Reader, error) {
	if contentTypeCharset(contentType) == "" && !utf8.Valid(raw) {
		if detected := DetectCharset(raw); detected != "" {
			contentType = "text/html; charset=" + detected
		}
	}
	return charset.NewReader(bytes.NewReader(raw), contentType)
}

func contentTypeCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// DetectCharset guesses the charset of raw bytes, "" when undetermined.
func DetectCharset(raw []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}
