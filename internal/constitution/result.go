package constitution

import (
	"fmt"
	"strings"

	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/semver"
)

// Counts aggregates what a decomposition produced.
type Counts struct {
	StrategicConstitutions int `json:"strategic_constitutions"`
	FeatureConstitutions   int `json:"feature_constitutions"`
	TotalPrinciples        int `json:"total_principles"`
	CriteriaDerived        int `json:"success_criteria_derived"`
	CriteriaPlaceholder    int `json:"success_criteria_placeholder"`
	EntitiesExtracted      int `json:"entities_extracted"`
	TraceabilityLinks      int `json:"traceability_links"`
}

// DecompositionError is a recoverable or fatal failure during generation.
type DecompositionError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

func (e DecompositionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DecompositionWarning flags content that generated but deserves review.
type DecompositionWarning struct {
	Section deck.SectionID `json:"section"`
	Message string         `json:"message"`
}

// Result is the outcome of one decomposition run.
type Result struct {
	Mode            deck.SourceMode        `json:"mode"`
	DeckPath        string                 `json:"pitch_deck_path"`
	DeckVersion     semver.Version         `json:"-"`
	DryRun          bool                   `json:"dry_run"`
	Counts          Counts                 `json:"counts"`
	WrittenFiles    []string               `json:"written_files,omitempty"`
	Warnings        []DecompositionWarning `json:"warnings,omitempty"`
	Errors          []DecompositionError   `json:"errors,omitempty"`
	DurationSeconds float64                `json:"duration_seconds"`
}

// Success reports whether generation completed without fatal errors.
// Recoverable per-file failures still count as success: the run produced
// a usable partial set.
func (r *Result) Success() bool {
	for _, e := range r.Errors {
		if !e.Recoverable {
			return false
		}
	}
	return true
}

// Partial reports whether some files failed while others were written.
func (r *Result) Partial() bool {
	return r.Success() && len(r.Errors) > 0
}

// Summary renders a short human-readable account of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decomposed pitch deck v%s (%s mode)\n", r.DeckVersion, r.Mode)
	fmt.Fprintf(&b, "  strategic constitutions: %d\n", r.Counts.StrategicConstitutions)
	fmt.Fprintf(&b, "  feature constitutions:   %d\n", r.Counts.FeatureConstitutions)
	fmt.Fprintf(&b, "  principles extracted:    %d\n", r.Counts.TotalPrinciples)
	fmt.Fprintf(&b, "  success criteria:        %d derived, %d placeholder\n",
		r.Counts.CriteriaDerived, r.Counts.CriteriaPlaceholder)
	fmt.Fprintf(&b, "  entities extracted:      %d\n", r.Counts.EntitiesExtracted)
	if r.DryRun {
		b.WriteString("  dry run: no files written\n")
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "  warnings: %d\n", len(r.Warnings))
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "  errors: %d\n", len(r.Errors))
	}
	return b.String()
}
