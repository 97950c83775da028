// Package constitution models the generated constitution documents and the
// decomposition that produces them from a pitch deck.
package constitution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bpkit/bpkit/internal/markdown"
	"github.com/bpkit/bpkit/internal/semver"
)

// Kind distinguishes the four strategic constitutions from per-feature ones.
type Kind string

const (
	Strategic Kind = "strategic"
	Feature   Kind = "feature"
)

// Principle is one constitutional principle parsed back from a document.
type Principle struct {
	ID    string
	Title string
	// Rule is the MUST line, or leading content when the principle has none.
	Rule       string
	SourceLink string
}

// HasRule reports whether the principle carries an explicit MUST statement.
func (p *Principle) HasRule() bool {
	return strings.Contains(strings.ToUpper(p.Rule), "MUST")
}

// Constitution is a parsed strategic or feature constitution document.
type Constitution struct {
	Path          string
	Kind          Kind
	Name          string
	Version       semver.Version
	Principles    []Principle
	UpstreamLinks []markdown.Link
	// FeatureLinks are references into the features directory, tracked
	// separately so dependency analysis sees feature-to-feature edges.
	FeatureLinks []markdown.Link
}

// Parse loads a constitution from disk. Documents without a frontmatter
// version default to 1.0.0 so pre-versioning files still load.
func Parse(path string) (*Constitution, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read constitution: %w", err)
	}

	fm, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("constitution %s: %w", path, err)
	}
	version := semver.Version{Major: 1}
	if fm.Version != "" {
		version, err = semver.Parse(fm.Version)
		if err != nil {
			return nil, fmt.Errorf("constitution %s: %w", path, err)
		}
	}

	c := &Constitution{
		Path:    path,
		Kind:    kindForPath(path),
		Name:    strings.TrimSuffix(filepath.Base(path), ".md"),
		Version: version,
	}

	for _, link := range markdown.ExtractLinks(body) {
		switch {
		case isUpstreamTarget(link):
			c.UpstreamLinks = append(c.UpstreamLinks, link)
		case strings.Contains(link.File, "features/"):
			c.FeatureLinks = append(c.FeatureLinks, link)
		}
	}

	for _, s := range markdown.ParseSections(body) {
		if !isPrincipleHeading(s.Slug) {
			continue
		}
		c.Principles = append(c.Principles, Principle{
			ID:         s.Slug,
			Title:      s.Title,
			Rule:       principleRule(s.Body),
			SourceLink: principleSource(s.Body),
		})
	}
	return c, nil
}

// Principle returns the principle with the given id, or nil.
func (c *Constitution) Principle(id string) *Principle {
	for i := range c.Principles {
		if c.Principles[i].ID == id {
			return &c.Principles[i]
		}
	}
	return nil
}

func kindForPath(path string) Kind {
	normalized := filepath.ToSlash(path)
	switch {
	case strings.Contains(normalized, "/features/"):
		return Feature
	case strings.Contains(normalized, "/memory/"):
		return Strategic
	}
	// Feature files are named NNN-kebab-name.md.
	base := filepath.Base(normalized)
	if len(base) > 4 && base[3] == '-' &&
		base[0] >= '0' && base[0] <= '9' &&
		base[1] >= '0' && base[1] <= '9' &&
		base[2] >= '0' && base[2] <= '9' {
		return Feature
	}
	return Strategic
}

func isUpstreamTarget(link markdown.Link) bool {
	url := link.Target
	return strings.Contains(url, "/deck/") ||
		strings.Contains(url, "/memory/") ||
		strings.Contains(url, "pitch-deck.md")
}

func isPrincipleHeading(slug string) bool {
	return strings.Contains(slug, "principle") ||
		strings.HasPrefix(slug, "fp") ||
		strings.HasPrefix(slug, "sp")
}

// principleRule returns the first MUST line of a principle body, falling
// back to the leading content when no explicit rule exists.
func principleRule(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(strings.ToUpper(line), "MUST") {
			return strings.TrimSpace(line)
		}
	}
	if len(body) > 100 {
		return strings.TrimSpace(body[:100])
	}
	return strings.TrimSpace(body)
}

func principleSource(body string) string {
	for _, link := range markdown.ExtractLinks([]byte(body)) {
		if isUpstreamTarget(link) {
			return link.Target
		}
	}
	return ""
}
