package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// Frontmatter is the YAML metadata block at the head of a document.
// Keys beyond the known ones are preserved round-trip in Extra.
type Frontmatter struct {
	Version     string         `yaml:"version,omitempty"`
	Title       string         `yaml:"title,omitempty"`
	LastUpdated string         `yaml:"last_updated,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// SplitFrontmatter separates a document into its frontmatter block and body.
// A frontmatter block is a leading "---" line, YAML content, and a closing
// "---" line. Documents without one return a zero Frontmatter and the full
// input as body.
func SplitFrontmatter(content []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter

	trimmed := bytes.TrimLeft(content, "\ufeff")
	if !bytes.HasPrefix(trimmed, []byte(frontmatterDelim+"\n")) &&
		!bytes.HasPrefix(trimmed, []byte(frontmatterDelim+"\r\n")) {
		return fm, content, nil
	}

	rest := trimmed[len(frontmatterDelim):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	end := findClosingDelim(rest)
	if end < 0 {
		return fm, content, fmt.Errorf("unterminated frontmatter block")
	}

	block := rest[:end]
	body := rest[end:]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return fm, content, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}

func findClosingDelim(b []byte) int {
	offset := 0
	for {
		i := bytes.Index(b[offset:], []byte(frontmatterDelim))
		if i < 0 {
			return -1
		}
		pos := offset + i
		atLineStart := pos == 0 || b[pos-1] == '\n'
		lineEnd := pos + len(frontmatterDelim)
		atLineEnd := lineEnd >= len(b) || b[lineEnd] == '\n' || b[lineEnd] == '\r'
		if atLineStart && atLineEnd {
			return pos
		}
		offset = pos + len(frontmatterDelim)
	}
}

// RenderFrontmatter serializes a frontmatter block followed by the body.
func RenderFrontmatter(fm Frontmatter, body []byte) ([]byte, error) {
	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelim)
	b.WriteByte('\n')
	b.Write(encoded)
	b.WriteString(frontmatterDelim)
	b.WriteByte('\n')
	b.Write(body)
	return []byte(b.String()), nil
}
