package markdown

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Link is a markdown inline link found in a document body.
type Link struct {
	Text string
	// Target is the raw link destination, e.g. "pitch-deck.md#problem".
	Target string
	// File and Anchor are Target split at the "#". Either may be empty:
	// "#problem" is a same-document anchor, "pitch-deck.md" a bare file.
	File   string
	Anchor string
	// Line is the 1-based line number the link appears on.
	Line int
}

// Inline links only. Images ![...](...) are excluded by the leading
// character check below; reference-style links never appear in the
// documents this pipeline writes or reads.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

// ExtractLinks finds every inline markdown link in body with its line
// number. Links inside fenced code blocks are skipped.
func ExtractLinks(body []byte) []Link {
	var links []Link

	inFence := false
	lineNo := 0
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
			// Skip image links.
			if m[0] > 0 && line[m[0]-1] == '!' {
				continue
			}
			text := line[m[2]:m[3]]
			target := line[m[4]:m[5]]
			file, anchor, _ := strings.Cut(target, "#")
			links = append(links, Link{
				Text:   text,
				Target: target,
				File:   file,
				Anchor: anchor,
				Line:   lineNo,
			})
		}
	}
	return links
}
