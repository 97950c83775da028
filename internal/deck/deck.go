// Package deck models the Sequoia-structured pitch deck document: the ten
// canonical sections, their routing into constitutions, version metadata,
// and the parse/render round trip.
package deck

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bpkit/bpkit/internal/markdown"
	"github.com/bpkit/bpkit/internal/semver"
)

// SourceMode records how a pitch deck came to exist.
type SourceMode string

const (
	SourceInteractive SourceMode = "interactive"
	SourceFromFile    SourceMode = "from-file"
	SourceFromPDF     SourceMode = "from-pdf"
	SourceManual      SourceMode = "manual"
)

// Section is one pitch deck section with its position in the source file.
type Section struct {
	ID      SectionID
	Title   string
	Content string
	Line    int
}

// Content that is blank or reads as a bare placeholder token.
var placeholders = []string{"[tbd]", "[x]", "[todo]", "[needs input]", "..."}

// IsEmpty reports whether the section has no substantive content.
func (s *Section) IsEmpty() bool {
	trimmed := strings.ToLower(strings.TrimSpace(s.Content))
	if trimmed == "" {
		return true
	}
	for _, p := range placeholders {
		if trimmed == p || strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// WordCount returns the number of whitespace-separated words in the section.
func (s *Section) WordCount() int {
	return markdown.WordCount(s.Content)
}

var vaguePatterns = []string{
	"[tbd]",
	"[x]",
	"[todo]",
	"[needs clarification]",
	"[needs input]",
	"tbd",
	"to be determined",
	"coming soon",
	"...",
	"etc.",
	"and more",
	"and so on",
}

// VagueIndicators returns every vagueness marker found in the section
// content, in the casing it appears with in the source.
func (s *Section) VagueIndicators() []string {
	var found []string
	lower := strings.ToLower(s.Content)
	for _, p := range vaguePatterns {
		if !strings.Contains(lower, p) {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
		if m := re.FindString(s.Content); m != "" {
			found = append(found, m)
		}
	}
	return found
}

// Deck is a parsed pitch deck document.
type Deck struct {
	Path         string
	Version      semver.Version
	Sections     []Section
	Source       SourceMode
	LastModified time.Time
}

// Load parses a pitch deck from disk. The frontmatter must carry a
// version; a deck without one cannot participate in drift analysis.
func Load(path string) (*Deck, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pitch deck: %w", err)
	}

	fm, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("pitch deck %s: %w", path, err)
	}
	if fm.Version == "" {
		return nil, fmt.Errorf("pitch deck %s has no version in frontmatter", path)
	}
	version, err := semver.Parse(fm.Version)
	if err != nil {
		return nil, fmt.Errorf("pitch deck %s: %w", path, err)
	}

	d := &Deck{
		Path:    path,
		Version: version,
		Source:  SourceManual,
	}
	for _, ms := range markdown.ParseSections(body) {
		id, ok := titleToID[strings.ToLower(strings.TrimSpace(ms.Title))]
		if !ok {
			// Unrecognized headings keep their slug as id so they still
			// surface in validation output.
			id = SectionID(ms.Slug)
		}
		d.Sections = append(d.Sections, Section{
			ID:      id,
			Title:   ms.Title,
			Content: ms.Body,
			Line:    ms.Line,
		})
	}

	if info, err := os.Stat(path); err == nil {
		d.LastModified = info.ModTime()
	} else {
		d.LastModified = time.Now()
	}
	return d, nil
}

// ParseSequoia loads a deck and requires the full ten-section Sequoia
// structure. Missing sections are named in the error, sorted.
func ParseSequoia(path string, source SourceMode) (*Deck, error) {
	d, err := Load(path)
	if err != nil {
		return nil, err
	}
	d.Source = source

	if missing := d.MissingSections(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, id := range missing {
			names[i] = string(id)
		}
		return nil, fmt.Errorf(
			"pitch deck missing required Sequoia sections: %s",
			strings.Join(names, ", "))
	}
	return d, nil
}

// MissingSections returns the Sequoia sections absent from the deck,
// sorted by id.
func (d *Deck) MissingSections() []SectionID {
	present := make(map[SectionID]bool, len(d.Sections))
	for i := range d.Sections {
		present[d.Sections[i].ID] = true
	}
	var missing []SectionID
	for _, id := range SequoiaSections {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// Section returns the section with the given id, or nil.
func (d *Deck) Section(id SectionID) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// UpdateSection replaces a section's content in memory.
func (d *Deck) UpdateSection(id SectionID, content string) error {
	s := d.Section(id)
	if s == nil {
		return fmt.Errorf("section %q not found in pitch deck", id)
	}
	s.Content = content
	return nil
}

// BumpVersion increments the deck version and returns the new value.
func (d *Deck) BumpVersion(b semver.Bump) semver.Version {
	d.Version = d.Version.Bumped(b)
	return d.Version
}

// Render serializes the deck to markdown: frontmatter followed by each
// section as a level-1 heading in stored order.
func (d *Deck) Render() ([]byte, error) {
	var b strings.Builder
	for i := range d.Sections {
		s := &d.Sections[i]
		title := s.Title
		if title == "" {
			title = s.ID.Title()
		}
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s.Content))
		b.WriteString("\n\n")
	}

	fm := markdown.Frontmatter{
		Version:     d.Version.String(),
		LastUpdated: time.Now().Format("2006-01-02"),
	}
	return markdown.RenderFrontmatter(fm, []byte(b.String()))
}

// Save writes the deck back to its file, reconstructing the document
// from the in-memory sections so edits and version bumps both persist.
func (d *Deck) Save() error {
	content, err := d.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.Path, content, 0o644); err != nil {
		return fmt.Errorf("write pitch deck: %w", err)
	}
	return nil
}

// New builds an unsaved deck at version 1.0.0 with all ten Sequoia
// sections, using content from the given map (missing sections get a
// placeholder body).
func New(path string, content map[SectionID]string, source SourceMode) *Deck {
	d := &Deck{
		Path:         path,
		Version:      semver.Version{Major: 1},
		Source:       source,
		LastModified: time.Now(),
	}
	for _, id := range SequoiaSections {
		body, ok := content[id]
		if !ok || strings.TrimSpace(body) == "" {
			body = "[TBD]"
		}
		d.Sections = append(d.Sections, Section{
			ID:      id,
			Title:   id.Title(),
			Content: strings.TrimSpace(body),
		})
	}
	return d
}
