package pdfx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpkit/bpkit/internal/deck"
)

func TestScore_Tiers(t *testing.T) {
	long := strings.Repeat("x", 30)

	full := make([]Block, 10)
	for i := range full {
		full[i] = Block{Title: "S", Content: long}
	}
	assert.InDelta(t, 1.0, Score(full), 0.001)

	half := make([]Block, 5)
	for i := range half {
		half[i] = Block{Title: "S", Content: long}
	}
	assert.InDelta(t, 0.75, Score(half), 0.001)

	assert.InDelta(t, 0.50, Score(nil), 0.001)
}

func TestFinalize_Warnings(t *testing.T) {
	r := &Result{Blocks: []Block{{Title: "Problem", Content: "short"}}}
	Finalize(r)

	assert.InDelta(t, 0.50, r.Confidence, 0.001)
	require.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0], "only 1 sections detected")
	assert.Contains(t, r.Warnings[1], "confidence low")
}

func TestMatchSection(t *testing.T) {
	tests := []struct {
		title string
		want  deck.SectionID
		ok    bool
	}{
		{"Problem", deck.Problem, true},
		{"Market Size", deck.MarketSize, true},
		{"The Problem We Solve", deck.Problem, true},
		{"Our Mission", deck.CompanyPurpose, true},
		{"TAM and SAM", deck.MarketSize, true},
		{"Meet the Founders", deck.Team, true},
		{"Appendix", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchSection(tt.title)
		assert.Equal(t, tt.ok, ok, tt.title)
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestBlocksToMarkdown(t *testing.T) {
	r := &Result{
		Blocks: []Block{
			{Title: "The Problem We Solve", Content: "Travelers cannot find authentic stays.", Page: 2},
			{Title: "Our Solution", Content: "A trusted marketplace.", Page: 3},
			{Title: "Thank You", Content: "Contact us.", Page: 12},
		},
		TotalPages: 12,
	}

	md := BlocksToMarkdown(r)

	assert.True(t, strings.HasPrefix(md, "---\nversion: 1.0.0\n"))
	assert.Contains(t, md, "# Problem\n\nTravelers cannot find authentic stays.")
	assert.Contains(t, md, "# Solution\n\nA trusted marketplace.")
	// Missing canonical sections become placeholders.
	assert.Contains(t, md, "# Team\n\n[TBD]")
	// Unmatched slides are dropped with a warning comment.
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, md, `unmatched slide title "Thank You" (page 12) dropped`)

	// Canonical order preserved.
	assert.Less(t, strings.Index(md, "# Company Purpose"), strings.Index(md, "# Problem"))
	assert.Less(t, strings.Index(md, "# Problem"), strings.Index(md, "# Financials"))
}
