// Package pdfsource provides the PDF token source for the extraction engine.
//
// It uses ledongthuc/pdf (pure Go, no CGO) and exposes the document two ways:
// the full plain text, and per-glyph positioned fragments merged into word
// tokens in PDF user space (origin bottom-left, y increasing upward). The
// coordinate grid parser needs the complete token set, so extraction always
// walks every page before returning.
package pdfsource

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadableDocument signals that the PDF could not be decoded at all.
// It is distinct from the orchestrator's "no entries found" condition.
var ErrUnreadableDocument = errors.New("unreadable document: could not decode PDF")

// Token is one non-whitespace text fragment with its page-local position.
type Token struct {
	Page int
	Text string
	X    float64
	Y    float64
}

// Source is the contract the extraction orchestrator depends on.
type Source interface {
	ExtractText(buf []byte) (string, error)
	ExtractTokens(buf []byte) ([]Token, error)
}

// Glyphs on the same visual row can jitter vertically by sub-point amounts;
// rowTolerance groups them. wordGapMultiplier scales the font size into the
// maximum horizontal gap still considered intra-word.
const (
	rowTolerance      = 2.0
	wordGapMultiplier = 0.5
	fallbackWordGap   = 3.0
)

// PDFSource implements Source on top of ledongthuc/pdf.
type PDFSource struct{}

func New() *PDFSource {
	return &PDFSource{}
}

// ExtractText returns the concatenated plain text of all pages.
func (s *PDFSource) ExtractText(buf []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed files; surface that as unreadable.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	r, err := s.open(buf)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages; schedule PDFs are usually single-page.
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ExtractTokens returns word-level positioned tokens for every page.
func (s *PDFSource) ExtractTokens(buf []byte) (tokens []Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	r, err := s.open(buf)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		tokens = append(tokens, mergeWords(i, page.Content().Text)...)
	}
	return tokens, nil
}

func (s *PDFSource) open(buf []byte) (*pdf.Reader, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrUnreadableDocument)
	}
	r, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return r, nil
}

// mergeWords groups per-glyph fragments into rows by y, sorts each row by x,
// and joins glyphs whose horizontal gap stays below the word-break threshold.
// The resulting token keeps the position of its first glyph.
func mergeWords(pageNum int, chars []pdf.Text) []Token {
	if len(chars) == 0 {
		return nil
	}

	rows := groupRows(chars)

	var tokens []Token
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		var cur *Token
		var curEnd float64 // right edge of the glyph last appended
		var curFont float64
		for _, ch := range row {
			if cur == nil {
				cur = &Token{Page: pageNum, Text: ch.S, X: ch.X, Y: ch.Y}
				curEnd = ch.X + ch.W
				curFont = ch.FontSize
				continue
			}

			threshold := wordGapMultiplier * curFont
			if threshold <= 0 {
				threshold = fallbackWordGap
			}
			if ch.X-curEnd <= threshold && !isSpace(ch.S) {
				cur.Text += ch.S
				curEnd = ch.X + ch.W
				continue
			}

			tokens = appendToken(tokens, cur)
			if isSpace(ch.S) {
				cur = nil
				continue
			}
			cur = &Token{Page: pageNum, Text: ch.S, X: ch.X, Y: ch.Y}
			curEnd = ch.X + ch.W
			curFont = ch.FontSize
		}
		tokens = appendToken(tokens, cur)
	}
	return tokens
}

// groupRows buckets glyphs whose y differs by at most rowTolerance.
func groupRows(chars []pdf.Text) [][]pdf.Text {
	sorted := make([]pdf.Text, len(chars))
	copy(sorted, chars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]pdf.Text
	for _, ch := range sorted {
		if n := len(rows); n > 0 {
			last := rows[n-1]
			if last[0].Y-ch.Y <= rowTolerance {
				rows[n-1] = append(last, ch)
				continue
			}
		}
		rows = append(rows, []pdf.Text{ch})
	}
	return rows
}

func appendToken(tokens []Token, cur *Token) []Token {
	if cur == nil {
		return tokens
	}
	text := strings.TrimSpace(cur.Text)
	if text == "" {
		return tokens
	}
	cur.Text = text
	return append(tokens, *cur)
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}
