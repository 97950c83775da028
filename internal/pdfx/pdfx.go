// Package pdfx defines the boundary for PDF pitch deck extraction.
// Actual PDF parsing is delegated to an Extractor implementation; this
// package handles confidence scoring and conversion of extracted
// blocks into a Sequoia-structured markdown deck.
package pdfx

import (
	"fmt"
	"strings"

	"github.com/bpkit/bpkit/internal/deck"
)

// Block is one titled run of text pulled from a PDF, typically split
// on heading-sized fonts.
type Block struct {
	Title      string
	Content    string
	Page       int
	Confidence float64
}

// Result is the outcome of extracting one PDF.
type Result struct {
	Blocks     []Block
	TotalPages int
	Confidence float64
	Warnings   []string
}

// Extractor turns a PDF file into titled text blocks. Implementations
// own the parsing strategy; callers only see blocks and warnings.
type Extractor interface {
	Extract(path string) (*Result, error)
}

// expectedSections is the full Sequoia deck section count.
const expectedSections = 10

// Score computes overall extraction confidence from block count and
// content coverage. Starts at 0.50 and earns up to 0.30 for section
// count and 0.20 for sections that carry real content.
func Score(blocks []Block) float64 {
	confidence := 0.50

	switch {
	case len(blocks) >= expectedSections:
		confidence += 0.30
	case len(blocks) >= 5:
		confidence += 0.15
	}

	withContent := 0
	for _, b := range blocks {
		if len(b.Content) > 20 {
			withContent++
		}
	}
	switch {
	case withContent >= 8:
		confidence += 0.20
	case withContent >= 5:
		confidence += 0.10
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// Finalize fills in the result's confidence and standard warnings from
// its blocks.
func Finalize(r *Result) {
	r.Confidence = Score(r.Blocks)
	if len(r.Blocks) < expectedSections {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("only %d sections detected (expected %d Sequoia sections)", len(r.Blocks), expectedSections))
	}
	if r.Confidence < 0.85 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("extraction confidence low (%.0f%%), manual review recommended", r.Confidence*100))
	}
}

// MatchSection maps an extracted block title onto a canonical deck
// section. Exact title matches win; otherwise a canonical title
// appearing anywhere inside the block title counts, so slides named
// "The Problem We Solve" still land on the problem section.
func MatchSection(title string) (deck.SectionID, bool) {
	if id, ok := deck.SectionIDForTitle(title); ok {
		return id, true
	}
	lower := strings.ToLower(title)
	for _, id := range deck.SequoiaSections {
		if strings.Contains(lower, strings.ToLower(id.Title())) {
			return id, true
		}
	}
	for _, alias := range titleAliases {
		if strings.Contains(lower, alias.text) {
			return alias.id, true
		}
	}
	return "", false
}

// Common slide-title variants, checked in order so matching stays
// deterministic.
var titleAliases = []struct {
	text string
	id   deck.SectionID
}{
	{"mission", deck.CompanyPurpose},
	{"purpose", deck.CompanyPurpose},
	{"our solution", deck.Solution},
	{"market", deck.MarketSize},
	{"tam", deck.MarketSize},
	{"competitors", deck.Competition},
	{"monetization", deck.BusinessModel},
	{"revenue", deck.BusinessModel},
	{"founders", deck.Team},
}

// BlocksToMarkdown renders extracted blocks as a Sequoia deck in
// canonical section order. Unmatched blocks are dropped with a
// warning appended to the result; canonical sections with no matching
// block render as placeholders for later clarification.
func BlocksToMarkdown(r *Result) string {
	bySection := make(map[deck.SectionID][]string)
	for _, b := range r.Blocks {
		id, ok := MatchSection(b.Title)
		if !ok {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("unmatched slide title %q (page %d) dropped", b.Title, b.Page))
			continue
		}
		if content := strings.TrimSpace(b.Content); content != "" {
			bySection[id] = append(bySection[id], content)
		}
	}

	var sb strings.Builder
	sb.WriteString("---\nversion: 1.0.0\ntitle: Pitch Deck\n---\n\n")
	for _, id := range deck.SequoiaSections {
		fmt.Fprintf(&sb, "# %s\n\n", id.Title())
		if parts, ok := bySection[id]; ok {
			sb.WriteString(strings.Join(parts, "\n\n"))
		} else {
			sb.WriteString("[TBD]")
		}
		sb.WriteString("\n\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("<!-- EXTRACTION WARNINGS -->\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "<!-- %s -->\n", w)
		}
	}
	return sb.String()
}
