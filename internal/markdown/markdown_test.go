package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Market Size", "market-size"},
		{"What's the Problem?", "whats-the-problem"},
		{"Company Purpose", "company-purpose"},
		{"Why Now", "why-now"},
		{"Go-To-Market", "go-to-market"},
		{"api_reference Guide", "api_reference-guide"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Café Métrics", "cafe-metrics"},
		{"100% Growth!", "100-growth"},
		{"", ""},
		{"???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestParseSections_Basic(t *testing.T) {
	body := []byte(`preamble text is dropped

# Company Purpose

We make widgets.

## Detail

More words here.

# Problem

Widgets are scarce.
`)

	sections := ParseSections(body)
	require.Len(t, sections, 3)

	assert.Equal(t, "Company Purpose", sections[0].Title)
	assert.Equal(t, "company-purpose", sections[0].Slug)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 3, sections[0].Line)
	assert.Equal(t, "We make widgets.", sections[0].Body)

	assert.Equal(t, 2, sections[1].Level)
	assert.Equal(t, "detail", sections[1].Slug)

	assert.Equal(t, "Widgets are scarce.", sections[2].Body)
}

func TestParseSections_FencedCodeIgnored(t *testing.T) {
	body := []byte("# Real\n\n```\n# not a heading\n```\n\ntail\n")

	sections := ParseSections(body)
	require.Len(t, sections, 1)
	assert.Equal(t, "Real", sections[0].Title)
	assert.Contains(t, sections[0].Body, "# not a heading")
}

func TestHeadingIndex(t *testing.T) {
	body := []byte("# One\n## Two Words\n")
	index := HeadingIndex(body)

	assert.True(t, index["one"])
	assert.True(t, index["two-words"])
	assert.False(t, index["three"])
}

func TestSplitFrontmatter_RoundTrip(t *testing.T) {
	doc := []byte(`---
version: 1.2.0
title: Pitch Deck
---
# Body

text
`)

	fm, body, err := SplitFrontmatter(doc)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", fm.Version)
	assert.Equal(t, "Pitch Deck", fm.Title)
	assert.Equal(t, "# Body\n\ntext\n", string(body))

	out, err := RenderFrontmatter(fm, body)
	require.NoError(t, err)

	fm2, body2, err := SplitFrontmatter(out)
	require.NoError(t, err)
	assert.Equal(t, fm, fm2)
	assert.Equal(t, body, body2)
}

func TestSplitFrontmatter_ByteOrderMark(t *testing.T) {
	doc := []byte("\ufeff---\nversion: 2.0.0\n---\nbody\n")
	fm, body, err := SplitFrontmatter(doc)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", fm.Version)
	assert.Equal(t, "body\n", string(body))
}

func TestSplitFrontmatter_Absent(t *testing.T) {
	doc := []byte("# No Frontmatter\n")
	fm, body, err := SplitFrontmatter(doc)
	require.NoError(t, err)
	assert.Empty(t, fm.Version)
	assert.Equal(t, doc, body)
}

func TestSplitFrontmatter_Unterminated(t *testing.T) {
	doc := []byte("---\nversion: 1.0.0\n# Heading\n")
	_, _, err := SplitFrontmatter(doc)
	assert.Error(t, err)
}

func TestExtractLinks(t *testing.T) {
	body := []byte(`# Refs

See [the problem](pitch-deck.md#problem) and [purpose](pitch-deck.md#company-purpose).
Bare [file link](notes.md) and [anchor only](#local).
![image](diagram.png) is not a link.

` + "```\n[inside fence](skip.md#no)\n```\n")

	links := ExtractLinks(body)
	require.Len(t, links, 4)

	assert.Equal(t, "the problem", links[0].Text)
	assert.Equal(t, "pitch-deck.md", links[0].File)
	assert.Equal(t, "problem", links[0].Anchor)
	assert.Equal(t, 3, links[0].Line)

	assert.Equal(t, "notes.md", links[2].File)
	assert.Empty(t, links[2].Anchor)

	assert.Empty(t, links[3].File)
	assert.Equal(t, "local", links[3].Anchor)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount("one  two\nthree"))
}
