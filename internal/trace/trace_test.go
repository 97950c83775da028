package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpkit/bpkit/internal/constitution"
	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/markdown"
	"github.com/bpkit/bpkit/internal/semver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseLinkURL(t *testing.T) {
	link := ParseLinkURL(
		filepath.Join(".specify", "features", "001-booking.md"),
		markdown.Link{File: "../memory/company-constitution.md", Anchor: "principle-1", Line: 12},
	)

	assert.Equal(t, filepath.Join(".specify", "memory", "company-constitution.md"), link.TargetFile)
	assert.Equal(t, "principle-1", link.TargetSection)
	assert.Equal(t, FeatureToStrategic, link.Type)

	link = ParseLinkURL(
		filepath.Join(".specify", "memory", "company-constitution.md"),
		markdown.Link{File: "../deck/pitch-deck.md", Anchor: "problem", Line: 3},
	)
	assert.Equal(t, StrategicToPitch, link.Type)

	// A bare anchor points back at the source file.
	link = ParseLinkURL("notes.md", markdown.Link{Anchor: "local", Line: 1})
	assert.Equal(t, "notes.md", link.TargetFile)
}

func TestValidator_States(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "memory", "company-constitution.md")
	target := filepath.Join(dir, "deck", "pitch-deck.md")

	writeFile(t, source, "# Company\n")
	writeFile(t, target, "---\nversion: 1.0.0\n---\n# Problem\n\ntext\n")

	v := NewValidator()

	valid := v.Validate(Link{SourceFile: source, TargetFile: target, TargetSection: "problem"})
	assert.Equal(t, Valid, valid.State)
	assert.True(t, valid.OK())

	noAnchor := v.Validate(Link{SourceFile: source, TargetFile: target})
	assert.Equal(t, Valid, noAnchor.State)

	brokenSection := v.Validate(Link{SourceFile: source, TargetFile: target, TargetSection: "missing"})
	assert.Equal(t, BrokenSection, brokenSection.State)
	assert.Contains(t, brokenSection.Message, "#missing")
	assert.Contains(t, brokenSection.Suggestion, "problem")

	brokenFile := v.Validate(Link{SourceFile: source, TargetFile: filepath.Join(dir, "gone.md"), SourceLine: 7})
	assert.Equal(t, BrokenFile, brokenFile.State)
	assert.Contains(t, brokenFile.Suggestion, ":7")

	missingSource := v.Validate(Link{
		SourceFile: filepath.Join(dir, "nope.md"),
		TargetFile: filepath.Join(dir, "also-gone.md"),
	})
	assert.Equal(t, MissingSource, missingSource.State)
}

func TestValidator_ValidateAll_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.md")
	target := filepath.Join(dir, "target.md")
	writeFile(t, source, "# S\n")
	writeFile(t, target, "# Section One\n")

	links := []Link{
		{SourceFile: source, TargetFile: target, TargetSection: "section-one"},
		{SourceFile: source, TargetFile: filepath.Join(dir, "gone.md")},
		{SourceFile: source, TargetFile: target, TargetSection: "nope"},
		{SourceFile: source, TargetFile: target},
	}

	results := NewValidator().ValidateAll(context.Background(), links)
	require.Len(t, results, 4)

	assert.Equal(t, Valid, results[0].State)
	assert.Equal(t, BrokenFile, results[1].State)
	assert.Equal(t, BrokenSection, results[2].State)
	assert.Equal(t, Valid, results[3].State)

	summary := Summary(results)
	assert.Equal(t, 2, summary[Valid])
	assert.Equal(t, 1, summary[BrokenFile])
	assert.Equal(t, 1, summary[BrokenSection])
	assert.Equal(t, 0, summary[MissingSource])

	assert.Len(t, Broken(results), 2)
}

func parseConstitution(t *testing.T, path, content string) *constitution.Constitution {
	t.Helper()
	writeFile(t, path, content)
	c, err := constitution.Parse(path)
	require.NoError(t, err)
	return c
}

func TestDetectConflicts_AntonymPair(t *testing.T) {
	dir := t.TempDir()

	c1 := parseConstitution(t, filepath.Join(dir, "memory", "product-constitution.md"), `---
version: 1.0.0
---
# Product Constitution

## Principle 1: Mobile First

The product MUST target mobile users first.
`)
	c2 := parseConstitution(t, filepath.Join(dir, "memory", "market-constitution.md"), `---
version: 1.0.0
---
# Market Constitution

## Principle 1: Desktop Buyers

The market analysis MUST assume desktop procurement.
`)

	conflicts := DetectConflicts([]*constitution.Constitution{c1, c2})
	require.Len(t, conflicts, 1)
	assert.Equal(t, "product-constitution", conflicts[0].Constitution)
	assert.Contains(t, conflicts[0].Description, "'mobile'")
	assert.Contains(t, conflicts[0].Description, "'desktop'")
}

func TestDetectConflicts_IgnoresFeatureConstitutions(t *testing.T) {
	dir := t.TempDir()
	c1 := parseConstitution(t, filepath.Join(dir, "features", "001-app.md"), `# F

## Principle 1: Mobile

MUST be mobile.
`)
	c2 := parseConstitution(t, filepath.Join(dir, "features", "002-site.md"), `# F

## Principle 1: Desktop

MUST be desktop.
`)
	assert.Empty(t, DetectConflicts([]*constitution.Constitution{c1, c2}))
}

func TestCheckCoverage(t *testing.T) {
	dir := t.TempDir()
	d := deck.New(filepath.Join(dir, "pitch-deck.md"), nil, deck.SourceManual)

	c := parseConstitution(t, filepath.Join(dir, "memory", "company-constitution.md"), `---
version: 1.0.0
---
# Company Constitution

See [problem](../deck/pitch-deck.md#problem) and [solution](../deck/pitch-deck.md#solution).
`)

	gaps := CheckCoverage(d, []*constitution.Constitution{c})
	assert.Len(t, gaps, 8)
	assert.NotContains(t, gaps, deck.Problem)
	assert.NotContains(t, gaps, deck.Solution)
	assert.Contains(t, gaps, deck.Team)
}

func TestCheckVersions(t *testing.T) {
	dir := t.TempDir()
	d := deck.New(filepath.Join(dir, "pitch-deck.md"), nil, deck.SourceManual)
	d.Version = semver.Version{Major: 1, Minor: 2}

	current := parseConstitution(t, filepath.Join(dir, "memory", "a-constitution.md"),
		"---\nversion: 1.2.0\n---\n# A\n")
	stale := parseConstitution(t, filepath.Join(dir, "memory", "b-constitution.md"),
		"---\nversion: 1.0.0\n---\n# B\n")

	mismatches := CheckVersions(d, []*constitution.Constitution{current, stale})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "b-constitution", mismatches[0].Constitution)
	assert.Equal(t, "1.0.0", mismatches[0].Found.String())
	assert.Equal(t, "1.2.0", mismatches[0].Current.String())
}

func TestDetectCycles_TwoNode(t *testing.T) {
	dir := t.TempDir()

	a := parseConstitution(t, filepath.Join(dir, ".specify", "features", "001-user-management.md"), `# A

Depends on [auth](../features/002-authentication.md#feature-002-authentication).
`)
	b := parseConstitution(t, filepath.Join(dir, ".specify", "features", "002-authentication.md"), `# B

Depends on [users](../features/001-user-management.md#feature-001-user-management).
`)

	cycles := DetectCycles([]*constitution.Constitution{a, b})
	require.Len(t, cycles, 1)
	assert.Equal(t,
		[]string{"001-user-management", "002-authentication", "001-user-management"},
		cycles[0])
}

func TestDetectCycles_Acyclic(t *testing.T) {
	dir := t.TempDir()
	a := parseConstitution(t, filepath.Join(dir, ".specify", "features", "001-a.md"), `# A

Depends on [b](../features/002-b.md).
`)
	b := parseConstitution(t, filepath.Join(dir, ".specify", "features", "002-b.md"), "# B\n\nNo deps.\n")

	assert.Empty(t, DetectCycles([]*constitution.Constitution{a, b}))
}

func TestOrphanedPrinciples(t *testing.T) {
	dir := t.TempDir()

	strategic := parseConstitution(t, filepath.Join(dir, ".specify", "memory", "company-constitution.md"), `---
version: 1.0.0
---
# Company Constitution

## Principle 1: Referenced

The business MUST keep this.

## Principle 2: Orphaned

The business MUST also keep this.
`)
	feature := parseConstitution(t, filepath.Join(dir, ".specify", "features", "001-thing.md"), `# F

Traces to [principle](../memory/company-constitution.md#principle-1-referenced).
`)

	orphans := OrphanedPrinciples([]*constitution.Constitution{strategic, feature})
	require.Len(t, orphans, 1)
	assert.Equal(t, "company-constitution", orphans[0].Constitution)
	assert.Equal(t, "principle-2-orphaned", orphans[0].PrincipleID)
}
