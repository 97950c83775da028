package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteChangelog persists the report as a dated markdown artifact under
// the changelog directory and returns the file path. Reports written on
// the same day overwrite each other, keeping one entry per day.
func (r *Report) WriteChangelog(changelogDir string) (string, error) {
	if err := os.MkdirAll(changelogDir, 0o755); err != nil {
		return "", fmt.Errorf("create changelog dir: %w", err)
	}

	path := filepath.Join(changelogDir, r.Timestamp.Format("2006-01-02")+"-analyze-report.md")

	var b strings.Builder
	status := "PASSING"
	if !r.Passing() {
		status = "FAILING"
	}
	b.WriteString("# Analysis Report\n\n")
	fmt.Fprintf(&b, "**Report ID**: %s\n", r.ID)
	fmt.Fprintf(&b, "**Date**: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Pitch Deck Version**: v%s\n", r.DeckVersion)
	fmt.Fprintf(&b, "**Constitutions Analyzed**: %d\n", r.ConstitutionsAnalyzed)
	fmt.Fprintf(&b, "**Status**: %s\n\n", status)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Errors**: %d (blocking issues)\n", len(r.Errors))
	fmt.Fprintf(&b, "- **Warnings**: %d (non-blocking issues)\n", len(r.Warnings))
	fmt.Fprintf(&b, "- **Info**: %d (informational)\n\n", len(r.Info))

	writeGroup := func(header string, issues []Issue, suggestions bool) {
		if len(issues) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", header)
		for i, issue := range issues {
			fmt.Fprintf(&b, "%d. %s\n", i+1, issue.Format())
			if suggestions && issue.Suggestion != "" {
				fmt.Fprintf(&b, "   - **Suggestion**: %s\n", issue.Suggestion)
			}
			b.WriteString("\n")
		}
	}
	writeGroup("Errors", r.Errors, true)
	writeGroup("Warnings", r.Warnings, true)
	writeGroup("Informational", r.Info, false)

	b.WriteString("## Next Steps\n\n")
	if r.Passing() {
		b.WriteString("- All validations passed\n")
		b.WriteString("- Run `bpkit checklist` to generate quality gates\n")
	} else {
		b.WriteString("- Fix all errors before proceeding\n")
		b.WriteString("- Re-run `bpkit analyze` to validate fixes\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write changelog report: %w", err)
	}
	return path, nil
}
