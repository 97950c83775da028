// Package analysis runs the consistency checks over a decomposed project
// and records the results as a dated report.
package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/bpkit/bpkit/internal/semver"
)

// Severity ranks an issue. Errors block progression, warnings should be
// fixed, info needs no action.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding from an analysis run.
type Issue struct {
	ID         string   `json:"id"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Format renders the issue the way the console report prints it.
func (i Issue) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(string(i.Severity)))
	if i.File != "" {
		b.WriteString(" " + i.File)
		if i.Line > 0 {
			fmt.Fprintf(&b, ":%d", i.Line)
		}
	}
	b.WriteString(": " + i.Message)
	return b.String()
}

// Report collects the issues from one analysis run.
type Report struct {
	ID                     string         `json:"report_id"`
	Timestamp              time.Time      `json:"timestamp"`
	DeckVersion            semver.Version `json:"-"`
	ConstitutionsAnalyzed  int            `json:"constitutions_analyzed"`
	LinksValidated         int            `json:"links_validated"`
	Errors                 []Issue        `json:"errors"`
	Warnings               []Issue        `json:"warnings"`
	Info                   []Issue        `json:"info"`
	FixedVersionMismatches []string       `json:"fixed_version_mismatches,omitempty"`
}

// NewReport stamps a report with the AR-YYYYMMDD-HHMMSS id scheme.
func NewReport(now time.Time, deckVersion semver.Version, constitutions int) *Report {
	return &Report{
		ID:                    "AR-" + now.Format("20060102-150405"),
		Timestamp:             now,
		DeckVersion:           deckVersion,
		ConstitutionsAnalyzed: constitutions,
	}
}

func (r *Report) AddError(i Issue) {
	i.Severity = SeverityError
	r.Errors = append(r.Errors, i)
}

func (r *Report) AddWarning(i Issue) {
	i.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, i)
}

func (r *Report) AddInfo(i Issue) {
	i.Severity = SeverityInfo
	r.Info = append(r.Info, i)
}

// Passing reports whether the run found no errors. Warnings do not fail
// an analysis.
func (r *Report) Passing() bool {
	return len(r.Errors) == 0
}

// Summary renders the console account of the report.
func (r *Report) Summary() string {
	status := "PASSING"
	if !r.Passing() {
		status = "FAILING"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis Report %s\n", r.ID)
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Pitch Deck Version: v%s\n", r.DeckVersion)
	fmt.Fprintf(&b, "Constitutions Analyzed: %d\n\n", r.ConstitutionsAnalyzed)
	fmt.Fprintf(&b, "Issues Found:\n")
	fmt.Fprintf(&b, "  - Errors: %d\n", len(r.Errors))
	fmt.Fprintf(&b, "  - Warnings: %d\n", len(r.Warnings))
	fmt.Fprintf(&b, "  - Info: %d\n", len(r.Info))

	writeGroup := func(header string, issues []Issue) {
		if len(issues) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n[%s]\n", header)
		for _, issue := range issues {
			fmt.Fprintf(&b, "  %s\n", issue.Format())
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "    Suggestion: %s\n", issue.Suggestion)
			}
		}
	}
	writeGroup("ERRORS", r.Errors)
	writeGroup("WARNINGS", r.Warnings)
	writeGroup("INFO", r.Info)
	return b.String()
}
