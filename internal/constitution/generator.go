package constitution

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/extract"
	"github.com/bpkit/bpkit/internal/semver"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var docTemplates = template.Must(template.New("constitution").
	Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}).
	ParseFS(templateFS, "templates/*.tmpl"))

// Generator turns a parsed pitch deck into the strategic and feature
// constitution set under root/.specify/.
type Generator struct {
	root string
	now  func() time.Time
}

func NewGenerator(root string) *Generator {
	return &Generator{root: root, now: time.Now}
}

// MemoryDir is where the strategic constitutions are written.
func (g *Generator) MemoryDir() string {
	return filepath.Join(g.root, ".specify", "memory")
}

// FeaturesDir is where the feature constitutions are written.
func (g *Generator) FeaturesDir() string {
	return filepath.Join(g.root, ".specify", "features")
}

type strategicPrinciple struct {
	Title      string
	Text       string
	Rationale  string
	Source     deck.SectionID
	Confidence float64
}

type strategicData struct {
	Title       string
	Version     semver.Version
	DeckVersion semver.Version
	Date        string
	Sections    []deck.SectionID
	Principles  []strategicPrinciple
}

type featureData struct {
	FeatureID    string
	FeatureTitle string
	Description  string
	Priority     extract.Priority
	Version      semver.Version
	DeckVersion  semver.Version
	Date         string
	Upstream     []deck.ConstitutionFile
	Entities     []extract.Entity
	Criteria     []extract.SuccessCriterion
}

// Decompose runs the full extraction pipeline over the deck and writes
// all constitutions. Individual render or write failures are recorded as
// recoverable errors and generation continues with the remaining files,
// so one bad section cannot sink the whole run.
func (g *Generator) Decompose(d *deck.Deck, dryRun bool) *Result {
	start := g.now()
	result := &Result{
		Mode:        d.Source,
		DeckPath:    d.Path,
		DeckVersion: d.Version,
		DryRun:      dryRun,
	}

	result.Warnings = contentWarnings(d)

	strategic := g.buildStrategic(d)
	features := g.buildFeatures(d)

	result.Counts = countStatistics(strategic, features)

	if !dryRun {
		g.write(strategic, features, result)
	}

	result.DurationSeconds = g.now().Sub(start).Seconds()
	return result
}

func contentWarnings(d *deck.Deck) []DecompositionWarning {
	var warnings []DecompositionWarning
	for i := range d.Sections {
		s := &d.Sections[i]
		switch {
		case s.IsEmpty():
			warnings = append(warnings, DecompositionWarning{
				Section: s.ID,
				Message: "section is empty or contains only placeholders",
			})
		case len(s.VagueIndicators()) > 0:
			warnings = append(warnings, DecompositionWarning{
				Section: s.ID,
				Message: fmt.Sprintf("section contains vague content: %s",
					strings.Join(s.VagueIndicators(), ", ")),
			})
		case s.WordCount() < 10 && s.ID != deck.CompanyPurpose:
			// Company purpose is allowed to be a single sentence.
			warnings = append(warnings, DecompositionWarning{
				Section: s.ID,
				Message: fmt.Sprintf("section has low word count (%d words)", s.WordCount()),
			})
		}
	}
	return warnings
}

func (g *Generator) buildStrategic(d *deck.Deck) map[deck.ConstitutionFile]strategicData {
	out := make(map[deck.ConstitutionFile]strategicData, len(deck.ConstitutionFiles))
	date := g.now().Format("2006-01-02")

	for _, file := range deck.ConstitutionFiles {
		sections := deck.SectionsFor(file)
		var principles []strategicPrinciple
		for _, id := range sections {
			s := d.Section(id)
			if s == nil {
				continue
			}
			for _, p := range extract.Principles(s.Content, id, extract.Strategic) {
				p = extract.WithRationale(p)
				principles = append(principles, strategicPrinciple{
					Title:      principleTitle(p.Text),
					Text:       p.Text,
					Rationale:  p.Rationale,
					Source:     p.Source,
					Confidence: p.Confidence,
				})
			}
		}

		name := strings.TrimSuffix(string(file), "-constitution.md")
		out[file] = strategicData{
			Title:       capitalize(name),
			Version:     d.Version,
			DeckVersion: d.Version,
			Date:        date,
			Sections:    sections,
			Principles:  principles,
		}
	}
	return out
}

func (g *Generator) buildFeatures(d *deck.Deck) map[string]featureData {
	productText := sectionText(d, deck.Product)
	solutionText := sectionText(d, deck.Solution)
	businessText := sectionText(d, deck.BusinessModel)

	features := extract.Features(productText, solutionText)
	entities := extract.Entities(productText, solutionText, businessText)
	date := g.now().Format("2006-01-02")

	out := make(map[string]featureData, len(features))
	for _, f := range features {
		filename := fmt.Sprintf("%s-%s.md", f.ID, f.Name)
		out[filename] = featureData{
			FeatureID:    f.ID,
			FeatureTitle: f.Title,
			Description:  f.Description,
			Priority:     f.Priority,
			Version:      d.Version,
			DeckVersion:  d.Version,
			Date:         date,
			Upstream:     deck.ConstitutionFiles,
			Entities:     relevantEntities(entities, f),
			Criteria:     extract.SuccessCriteria(businessText, productText, f.Title, f.ID),
		}
	}
	return out
}

// relevantEntities keeps entities whose name appears among the feature's
// keywords. When nothing matches, the generic account entities stand in.
func relevantEntities(entities []extract.Entity, f extract.Feature) []extract.Entity {
	keywords := append([]string{strings.ToLower(f.Name)}, f.Keywords...)
	var relevant []extract.Entity
	for _, e := range entities {
		nameLower := strings.ToLower(e.Name)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(kw, nameLower) {
				relevant = append(relevant, e)
				break
			}
		}
	}
	if len(relevant) > 0 {
		return relevant
	}
	for _, e := range entities {
		switch e.Name {
		case "User", "Profile", "Account":
			relevant = append(relevant, e)
		}
		if len(relevant) == 2 {
			break
		}
	}
	return relevant
}

func countStatistics(strategic map[deck.ConstitutionFile]strategicData, features map[string]featureData) Counts {
	var c Counts
	c.StrategicConstitutions = len(strategic)
	c.FeatureConstitutions = len(features)
	for _, data := range strategic {
		c.TotalPrinciples += len(data.Principles)
	}
	for _, data := range features {
		for _, criterion := range data.Criteria {
			if criterion.Type == extract.Derived {
				c.CriteriaDerived++
			} else {
				c.CriteriaPlaceholder++
			}
		}
		c.EntitiesExtracted += len(data.Entities)
	}
	// Each principle carries a source link plus the section index link.
	c.TraceabilityLinks = c.TotalPrinciples * 2
	return c
}

func (g *Generator) write(strategic map[deck.ConstitutionFile]strategicData, features map[string]featureData, result *Result) {
	for _, dir := range []string{g.MemoryDir(), g.FeaturesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			result.Errors = append(result.Errors, DecompositionError{
				Code:        "GENERATION_FAILED",
				Message:     err.Error(),
				Recoverable: false,
			})
			return
		}
	}

	for _, file := range deck.ConstitutionFiles {
		path := filepath.Join(g.MemoryDir(), string(file))
		g.renderTo(path, "strategic.md.tmpl", strategic[file], result)
	}

	// Feature files sort by their numeric id prefix.
	for _, filename := range sortedKeys(features) {
		path := filepath.Join(g.FeaturesDir(), filename)
		g.renderTo(path, "feature.md.tmpl", features[filename], result)
	}
}

func (g *Generator) renderTo(path, tmpl string, data any, result *Result) {
	var buf bytes.Buffer
	if err := docTemplates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		result.Errors = append(result.Errors, DecompositionError{
			Code:        "RENDER_FAILED",
			Message:     fmt.Sprintf("%s: %v", filepath.Base(path), err),
			Recoverable: true,
		})
		return
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		result.Errors = append(result.Errors, DecompositionError{
			Code:        "WRITE_FAILED",
			Message:     fmt.Sprintf("%s: %v", filepath.Base(path), err),
			Recoverable: true,
		})
		return
	}
	result.WrittenFiles = append(result.WrittenFiles, path)
}

func sectionText(d *deck.Deck, id deck.SectionID) string {
	if s := d.Section(id); s != nil {
		return s.Content
	}
	return ""
}

// principleTitle trims a principle statement to a short heading.
func principleTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > 6 {
		words = words[:6]
	}
	title := strings.Join(words, " ")
	return strings.TrimRight(title, ".,;:!?")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]featureData) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Filenames start with the zero-padded feature id, so plain string
	// ordering is numeric ordering.
	sort.Strings(keys)
	return keys
}
