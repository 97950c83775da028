package ambiguity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bpkit/bpkit/internal/deck"
)

// ClarifyLog records one clarify run for the changelog.
type ClarifyLog struct {
	SectionsUpdated int
	OldVersion      string
	NewVersion      string
	Target          deck.SectionID
	Now             time.Time
}

// WriteChangelog writes the clarification log into dir and returns the
// file path. The filename scope reflects whether the run was focused on
// one section or covered the whole deck.
func WriteChangelog(dir string, log ClarifyLog) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create changelog directory: %w", err)
	}

	scope := "full"
	scopeLine := "Full pitch deck"
	if log.Target != "" {
		scope = string(log.Target)
		scopeLine = "Section: " + string(log.Target)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-clarify-%s.md", log.Now.Format("2006-01-02"), scope))

	var b strings.Builder
	b.WriteString("# Clarification Log\n\n")
	fmt.Fprintf(&b, "**Date**: %s\n", log.Now.Format("2006-01-02 15:04:05"))
	b.WriteString("**Operation**: clarify\n")
	fmt.Fprintf(&b, "**Scope**: %s\n", scopeLine)
	fmt.Fprintf(&b, "**Sections Updated**: %d\n", log.SectionsUpdated)
	fmt.Fprintf(&b, "**Version**: %s -> %s\n\n", log.OldVersion, log.NewVersion)
	b.WriteString("## Changes\n\n")
	fmt.Fprintf(&b, "%d sections clarified through interactive Q&A.\n\n", log.SectionsUpdated)
	b.WriteString("## Next Steps\n\n")
	b.WriteString("- Run `bpkit decompose` to regenerate constitutions with clarifications\n")
	b.WriteString("- Run `bpkit analyze` to validate constitutional consistency\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write clarification log: %w", err)
	}
	return path, nil
}
