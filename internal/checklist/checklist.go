// Package checklist generates and parses quality validation checklists
// for constitutions. Strategic constitutions get a 10-item criteria
// set, feature constitutions a 15-item set.
package checklist

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/bpkit/bpkit/internal/constitution"
)

// Item is one validation criterion.
type Item struct {
	ID          string
	Description string
	Checked     bool
	Category    string
}

// Markdown renders the item as a checkbox line.
func (it Item) Markdown() string {
	box := "[ ]"
	if it.Checked {
		box = "[x]"
	}
	return fmt.Sprintf("- %s %s", box, it.Description)
}

// Checklist is the criteria set for one constitution.
type Checklist struct {
	ID               string
	ConstitutionName string
	Kind             constitution.Kind
	Items            []Item
	LastUpdated      time.Time
}

// Completion returns the checked percentage, 0.0 for an empty list.
func (c *Checklist) Completion() float64 {
	if len(c.Items) == 0 {
		return 0.0
	}
	checked := 0
	for _, it := range c.Items {
		if it.Checked {
			checked++
		}
	}
	return float64(checked) / float64(len(c.Items)) * 100.0
}

// Remaining counts unchecked items.
func (c *Checklist) Remaining() int {
	n := 0
	for _, it := range c.Items {
		if !it.Checked {
			n++
		}
	}
	return n
}

// criterion pairs a category with its checkbox text for the template.
type criterion struct {
	Category string
	Text     string
}

// Strategic constitutions validate traceability back to the deck plus
// principle quality.
var strategicCriteria = []criterion{
	{"Traceability", "Every principle links back to a pitch deck section"},
	{"Traceability", "Source section references resolve to real headings"},
	{"Traceability", "Constitution version matches the pitch deck version"},
	{"Quality", "Every principle states a testable MUST requirement"},
	{"Quality", "Principles avoid vague language (TBD, etc., coming soon)"},
	{"Quality", "No two principles contradict each other"},
	{"Quality", "Rationale is recorded for every principle"},
	{"Completeness", "All assigned deck sections contributed at least one principle"},
	{"Completeness", "Confidence scores have been reviewed for low-confidence extractions"},
	{"Completeness", "Stakeholders have reviewed and approved the constitution"},
}

// Feature constitutions add entity and success-criteria checks.
var featureCriteria = []criterion{
	{"Traceability", "Feature links to its strategic constitution"},
	{"Traceability", "Feature links back to the originating deck sections"},
	{"Traceability", "No circular dependencies with other features"},
	{"Traceability", "Feature version matches the pitch deck version"},
	{"Quality", "Every principle states a testable MUST requirement"},
	{"Quality", "Success criteria are measurable with concrete thresholds"},
	{"Quality", "Placeholder success criteria have been replaced with real targets"},
	{"Quality", "Entity relationships reflect the actual domain model"},
	{"Quality", "Priority (P1/P2/P3) matches business urgency"},
	{"Completeness", "All key entities are documented with attributes"},
	{"Completeness", "Entity constraints and states are specified"},
	{"Completeness", "Measurement approach is defined for every criterion"},
	{"Completeness", "Edge cases and failure modes are captured"},
	{"Completeness", "Dependencies on other features are documented"},
	{"Completeness", "Feature scope has been confirmed with stakeholders"},
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var checklistTemplate = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// CriteriaFor returns the item set for a constitution kind.
func CriteriaFor(kind constitution.Kind) []Item {
	source := strategicCriteria
	if kind == constitution.Feature {
		source = featureCriteria
	}
	items := make([]Item, 0, len(source))
	for i, c := range source {
		items = append(items, Item{
			ID:          fmt.Sprintf("CHK%03d", i+1),
			Description: c.Text,
			Category:    c.Category,
		})
	}
	return items
}

// New builds a fresh checklist for a constitution.
func New(name string, kind constitution.Kind, now time.Time) *Checklist {
	return &Checklist{
		ID:               "CL-" + name,
		ConstitutionName: name,
		Kind:             kind,
		Items:            CriteriaFor(kind),
		LastUpdated:      now,
	}
}

// Render produces the checklist markdown document.
func (c *Checklist) Render() (string, error) {
	categories := make([]string, 0, 3)
	byCategory := make(map[string][]Item)
	for _, it := range c.Items {
		if _, seen := byCategory[it.Category]; !seen {
			categories = append(categories, it.Category)
		}
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	var sb strings.Builder
	err := checklistTemplate.ExecuteTemplate(&sb, "checklist.md.tmpl", map[string]any{
		"Checklist":  c,
		"Kind":       string(c.Kind),
		"Date":       c.LastUpdated.Format("2006-01-02"),
		"Categories": categories,
		"ByCategory": byCategory,
	})
	if err != nil {
		return "", fmt.Errorf("render checklist: %w", err)
	}
	return sb.String(), nil
}

var checkboxPattern = regexp.MustCompile(`^\s*-\s*\[([ xX])\]\s*(.+)$`)

// ParseFile reads a checklist back from disk, recovering items, check
// state, and categories from the markdown.
func ParseFile(path string) (*Checklist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checklist: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), ".md")
	c := &Checklist{ID: "CL-" + stem, ConstitutionName: stem, Kind: constitution.Strategic}
	category := "General"
	counter := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "## "):
			category = strings.TrimSpace(line[3:])
		case strings.Contains(line, "**Constitution**:"):
			c.ConstitutionName = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		case strings.Contains(line, "**Type**:") && strings.Contains(line, "feature"):
			c.Kind = constitution.Feature
		default:
			m := checkboxPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			counter++
			c.Items = append(c.Items, Item{
				ID:          fmt.Sprintf("CHK%03d", counter),
				Description: strings.TrimSpace(m[2]),
				Checked:     m[1] == "x" || m[1] == "X",
				Category:    category,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}

	if info, err := os.Stat(path); err == nil {
		c.LastUpdated = info.ModTime()
	}
	return c, nil
}
