// Package text turns per-page document text into the single normalized stream
// the notice extractors scan.
package text

import "strings"

// Page is the text of one document page, in document order.
// Present is false when the page had no extractable text at all.
type Page struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

// NewPage builds a present page.
func NewPage(number int, s string) Page {
	return Page{Number: number, Text: s, Present: true}
}

// AbsentPage builds a page without text.
func AbsentPage(number int) Page {
	return Page{Number: number}
}

// AssembleStats counts what Assemble did with its input.
type AssembleStats struct {
	Seen    int
	Skipped int
}

// Assemble concatenates the normalized text of every page with text, separated
// by exactly one space. Page boundaries never glue or split tokens.
func Assemble(pages []Page) string {
	s, _ := AssembleWithStats(pages)
	return s
}

// AssembleWithStats is Assemble plus counters for pages seen and skipped.
func AssembleWithStats(pages []Page) (string, AssembleStats) {
	var (
		b     strings.Builder
		stats AssembleStats
	)
	for _, p := range pages {
		stats.Seen++
		if !p.Present {
			stats.Skipped++
			continue
		}
		norm := Normalize(p.Text)
		if norm == "" {
			stats.Skipped++
			continue
		}
		b.WriteByte(' ')
		b.WriteString(norm)
	}
	return strings.TrimSpace(b.String()), stats
}

// PagesFromStrings numbers raw page texts from 1. A nil entry is an absent page.
func PagesFromStrings(texts []*string) []Page {
	pages := make([]Page, 0, len(texts))
	for i, t := range texts {
		if t == nil {
			pages = append(pages, AbsentPage(i+1))
			continue
		}
		pages = append(pages, NewPage(i+1, *t))
	}
	return pages
}
