// Package markdown provides the line-oriented document model shared by the
// deck, constitution, and analysis layers: heading-delimited sections,
// anchor slugs, frontmatter, and cross-document links.
//
// The parser is deliberately not a full CommonMark implementation. Decks
// and constitutions are machine-written markdown with ATX headings; a
// line scanner covers everything the pipeline reads back, and keeps byte
// offsets and line numbers exact for issue reporting.
package markdown

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Section is a heading and the body text up to the next heading of the
// same or shallower level.
type Section struct {
	Title string
	Slug  string
	Level int
	Body  string
	// Line is the 1-based line number of the heading in the source.
	Line int
}

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*(?:#+\s*)?$`)

// ParseSections scans a markdown body into its heading-delimited sections.
// Text before the first heading is not part of any section and is dropped.
// Headings inside fenced code blocks are ignored.
func ParseSections(body []byte) []Section {
	var sections []Section
	var current *Section
	var bodyLines []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
			sections = append(sections, *current)
		}
		bodyLines = nil
	}

	inFence := false
	lineNo := 0
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingPattern.FindStringSubmatch(line); m != nil {
				flush()
				title := strings.TrimSpace(m[2])
				current = &Section{
					Title: title,
					Slug:  Slugify(title),
					Level: len(m[1]),
					Line:  lineNo,
				}
				continue
			}
		}
		if current != nil {
			bodyLines = append(bodyLines, line)
		}
	}
	flush()
	return sections
}

// HeadingIndex maps every heading slug in a document body to true.
// Used by link validation to answer "does target.md have #this-section".
func HeadingIndex(body []byte) map[string]bool {
	index := make(map[string]bool)
	for _, s := range ParseSections(body) {
		index[s.Slug] = true
	}
	return index
}

// WordCount counts whitespace-separated tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
