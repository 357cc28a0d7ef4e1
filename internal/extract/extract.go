// Package extract converts PDF statements into ordered page-level text blocks.
// It knows nothing about bank semantics; downstream components interpret the
// text against a statement profile.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/dslipak/pdf"
)

// TextBlock is one unit of extracted text with its position in the document.
type TextBlock struct {
	Page int
	Line int
	Text string
}

// PageText holds the ordered blocks of one page. A page with no extractable
// text has an empty Blocks slice.
type PageText struct {
	Number int
	Blocks []TextBlock
}

// Document is the extracted text of a whole statement.
type Document struct {
	Pages []PageText
}

// IsEmpty reports whether no page yielded any text.
func (d Document) IsEmpty() bool {
	for _, p := range d.Pages {
		if len(p.Blocks) > 0 {
			return false
		}
	}
	return true
}

// Lines flattens the first n pages into a single block sequence.
// n <= 0 means all pages.
func (d Document) Lines(n int) []TextBlock {
	if n <= 0 || n > len(d.Pages) {
		n = len(d.Pages)
	}
	var out []TextBlock
	for _, p := range d.Pages[:n] {
		out = append(out, p.Blocks...)
	}
	return out
}

// Text joins the first n pages into one string, for signature matching.
func (d Document) Text(n int) string {
	blocks := d.Lines(n)
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(blk.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Extract reads the text layer of a PDF. Pages whose text cannot be decoded
// contribute an empty block sequence rather than failing the document.
func Extract(data []byte) (doc Document, err error) {
	defer func() {
		// The pdf library panics on some malformed cross reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}

	doc = Document{Pages: make([]PageText, 0, r.NumPage())}
	for i := 1; i <= r.NumPage(); i++ {
		page := PageText{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			if text, err := pageText(p); err == nil {
				page.Blocks = splitLines(i, text)
			}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}

func splitLines(pageNum int, text string) []TextBlock {
	var blocks []TextBlock
	line := 0
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, TextBlock{
			Page: pageNum,
			Line: line,
			Text: deconcatenate(trimmed),
		})
		line++
	}
	return blocks
}

// Statements extracted without layout information often glue tokens together
// ("PAYMENTJan 5", "BALANCE$42.50"). These splits restore the boundaries the
// parsers key on.
var deconcatPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`([a-zA-Z])(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), "$1 $2"},
	{regexp.MustCompile(`(?i)([a-z])((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s?\d{1,2})`), "$1 $2"},
	{regexp.MustCompile(`([a-zA-Z])(\$\d)`), "$1 $2"},
	// Signed splits require cents so hyphenated date tokens
	// ("15-Feb-2025", "Mar-5") stay whole.
	{regexp.MustCompile(`([a-zA-Z])([+-]\$?\d[\d,]*\.\d{2})`), "$1 $2"},
	{regexp.MustCompile(`(\d),(\d{4})\b`), "$1, $2"},
}

func deconcatenate(s string) string {
	for _, p := range deconcatPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}

// FromText builds a Document from already-extracted text, one string per
// page. Used by parser tests and by callers that extract text elsewhere.
func FromText(pages ...string) Document {
	doc := Document{Pages: make([]PageText, 0, len(pages))}
	for i, text := range pages {
		doc.Pages = append(doc.Pages, PageText{
			Number: i + 1,
			Blocks: splitLines(i+1, text),
		})
	}
	return doc
}
