package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bpkit/bpkit/internal/constitution"
	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/markdown"
	"github.com/bpkit/bpkit/internal/trace"
)

// Runner executes the full analysis pipeline over a project directory.
type Runner struct {
	Root   string
	Logger *slog.Logger
	Now    func() time.Time
}

func NewRunner(root string) *Runner {
	return &Runner{Root: root, Logger: slog.Default(), Now: time.Now}
}

// Options controls a run.
type Options struct {
	// Fix rewrites stale constitution frontmatter versions to the
	// current deck version instead of only reporting them.
	Fix bool
}

func (r *Runner) deckPath() string {
	return filepath.Join(r.Root, ".specify", "deck", "pitch-deck.md")
}

// Run loads the deck and every constitution, executes all checks, and
// returns the report. A missing deck or empty constitution set is an
// error; individual unparseable constitutions are skipped with a log.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	d, err := deck.Load(r.deckPath())
	if err != nil {
		return nil, err
	}

	constitutions := r.loadConstitutions()
	if len(constitutions) == 0 {
		return nil, fmt.Errorf("no constitutions found: run decompose first")
	}

	report := NewReport(r.Now(), d.Version, len(constitutions))

	r.checkLinks(ctx, constitutions, report)
	r.checkConflicts(constitutions, report)
	r.checkCoverage(d, constitutions, report)
	r.checkVersions(d, constitutions, report, opts.Fix)
	r.checkCycles(constitutions, report)
	r.checkOrphans(constitutions, report)

	return report, nil
}

func (r *Runner) loadConstitutions() []*constitution.Constitution {
	var out []*constitution.Constitution
	dirs := []string{
		filepath.Join(r.Root, ".specify", "memory"),
		filepath.Join(r.Root, ".specify", "features"),
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			path := filepath.Join(dir, name)
			c, err := constitution.Parse(path)
			if err != nil {
				r.Logger.Warn("skipping unparseable constitution",
					"file", name, "error", err)
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func (r *Runner) checkLinks(ctx context.Context, constitutions []*constitution.Constitution, report *Report) {
	validator := trace.NewValidator()
	broken := 0

	for _, c := range constitutions {
		content, err := os.ReadFile(c.Path)
		if err != nil {
			continue
		}
		_, body, err := markdown.SplitFrontmatter(content)
		if err != nil {
			body = content
		}
		links := trace.ExtractLinks(c.Path, body)
		results := validator.ValidateAll(ctx, links)
		report.LinksValidated += len(results)

		for _, res := range trace.Broken(results) {
			broken++
			report.AddError(Issue{
				ID:         fmt.Sprintf("ERR%03d", broken),
				Message:    res.Message,
				File:       res.Link.SourceFile,
				Line:       res.Link.SourceLine,
				Suggestion: res.Suggestion,
			})
		}
	}
	r.Logger.Debug("links validated",
		"total", report.LinksValidated, "broken", broken)
}

func (r *Runner) checkConflicts(constitutions []*constitution.Constitution, report *Report) {
	for i, c := range trace.DetectConflicts(constitutions) {
		report.AddWarning(Issue{
			ID:         fmt.Sprintf("WARN%03d", i+1),
			Message:    "Potential conflict: " + c.Description,
			File:       filepath.Join(r.Root, ".specify", "memory", c.Constitution+".md"),
			Suggestion: "Review principles and align or document intentional trade-off",
		})
	}
}

func (r *Runner) checkCoverage(d *deck.Deck, constitutions []*constitution.Constitution, report *Report) {
	// Warning ids continue after the conflict warnings.
	offset := len(report.Warnings)
	for i, section := range trace.CheckCoverage(d, constitutions) {
		report.AddWarning(Issue{
			ID: fmt.Sprintf("WARN%03d", offset+i+1),
			Message: fmt.Sprintf(
				"Coverage gap: pitch deck section '%s' not referenced by any constitution", section),
			File:       r.deckPath(),
			Suggestion: fmt.Sprintf("Add principle to appropriate strategic constitution referencing #%s", section),
		})
	}
}

func (r *Runner) checkVersions(d *deck.Deck, constitutions []*constitution.Constitution, report *Report, fix bool) {
	for i, m := range trace.CheckVersions(d, constitutions) {
		if fix {
			if err := r.fixVersion(constitutions, m.Constitution, d); err != nil {
				r.Logger.Warn("version fix failed", "constitution", m.Constitution, "error", err)
			} else {
				report.FixedVersionMismatches = append(report.FixedVersionMismatches, m.Constitution)
				continue
			}
		}
		report.AddWarning(Issue{
			ID: fmt.Sprintf("VMIS%03d", i+1),
			Message: fmt.Sprintf("Version mismatch: constitution '%s' is v%s but pitch deck is v%s",
				m.Constitution, m.Found, m.Current),
			Suggestion: "Re-run decompose or use analyze --fix to update constitution versions",
		})
	}
}

// fixVersion rewrites the constitution's frontmatter version in place.
func (r *Runner) fixVersion(constitutions []*constitution.Constitution, name string, d *deck.Deck) error {
	for _, c := range constitutions {
		if c.Name != name {
			continue
		}
		content, err := os.ReadFile(c.Path)
		if err != nil {
			return err
		}
		fm, body, err := markdown.SplitFrontmatter(content)
		if err != nil {
			return err
		}
		fm.Version = d.Version.String()
		updated, err := markdown.RenderFrontmatter(fm, body)
		if err != nil {
			return err
		}
		c.Version = d.Version
		return os.WriteFile(c.Path, updated, 0o644)
	}
	return fmt.Errorf("constitution %q not loaded", name)
}

func (r *Runner) checkCycles(constitutions []*constitution.Constitution, report *Report) {
	for i, cycle := range trace.DetectCycles(constitutions) {
		report.AddWarning(Issue{
			ID:         fmt.Sprintf("CIRC%03d", i+1),
			Message:    "Circular dependency detected: " + strings.Join(cycle, " -> "),
			Suggestion: "Review feature dependencies and break the cycle",
		})
	}
}

func (r *Runner) checkOrphans(constitutions []*constitution.Constitution, report *Report) {
	for i, o := range trace.OrphanedPrinciples(constitutions) {
		report.AddInfo(Issue{
			ID: fmt.Sprintf("INFO%03d", i+1),
			Message: fmt.Sprintf("Orphaned principle: %s#%s has no downstream references",
				o.Constitution, o.PrincipleID),
			File: filepath.Join(r.Root, ".specify", "memory", o.Constitution+".md"),
		})
	}
}
