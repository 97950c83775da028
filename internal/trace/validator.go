package trace

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bpkit/bpkit/internal/markdown"
)

// ValidationState is the outcome of checking one link.
type ValidationState string

const (
	Valid         ValidationState = "valid"
	BrokenFile    ValidationState = "broken_file"
	BrokenSection ValidationState = "broken_section"
	MissingSource ValidationState = "missing_source"
)

// ValidationResult pairs a link with its validation state. Message and
// Suggestion are set for broken links.
type ValidationResult struct {
	Link       Link
	State      ValidationState
	Message    string
	Suggestion string
}

// OK reports whether the link resolved cleanly.
func (r ValidationResult) OK() bool {
	return r.State == Valid
}

// Validator checks traceability links against the filesystem. Heading
// indexes are cached per target file since feature constitutions all
// point at the same few documents.
type Validator struct {
	mu      sync.Mutex
	heading map[string]map[string]bool
}

func NewValidator() *Validator {
	return &Validator{heading: make(map[string]map[string]bool)}
}

// Validate checks a single link. States apply in fixed precedence:
// missing source, then missing target file, then missing target section.
func (v *Validator) Validate(link Link) ValidationResult {
	if _, err := os.Stat(link.SourceFile); err != nil {
		return ValidationResult{
			Link:    link,
			State:   MissingSource,
			Message: fmt.Sprintf("Source file does not exist: %s", link.SourceFile),
		}
	}

	if _, err := os.Stat(link.TargetFile); err != nil {
		return ValidationResult{
			Link:    link,
			State:   BrokenFile,
			Message: fmt.Sprintf("Target file does not exist: %s", link.TargetFile),
			Suggestion: fmt.Sprintf("Create %s or update link in %s:%d",
				link.TargetFile, link.SourceFile, link.SourceLine),
		}
	}

	if link.TargetSection != "" {
		index, err := v.headingIndex(link.TargetFile)
		if err != nil {
			return ValidationResult{
				Link:    link,
				State:   BrokenFile,
				Message: fmt.Sprintf("Failed to read target file %s: %v", link.TargetFile, err),
			}
		}
		if !index[link.TargetSection] {
			return ValidationResult{
				Link:       link,
				State:      BrokenSection,
				Message:    fmt.Sprintf("Section '#%s' not found in %s", link.TargetSection, link.TargetFile),
				Suggestion: "Available sections: " + availableSections(index),
			}
		}
	}

	return ValidationResult{Link: link, State: Valid, Message: "Link is valid"}
}

// ValidateAll checks every link concurrently, one goroutine per link,
// each writing its own slot of the results slice so output order matches
// input order and a broken link never affects its siblings.
func (v *Validator) ValidateAll(ctx context.Context, links []Link) []ValidationResult {
	results := make([]ValidationResult, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link Link) {
			defer wg.Done()
			if ctx.Err() != nil {
				results[i] = ValidationResult{Link: link, State: MissingSource, Message: ctx.Err().Error()}
				return
			}
			results[i] = v.Validate(link)
		}(i, link)
	}
	wg.Wait()
	return results
}

// Broken filters results down to the failed ones.
func Broken(results []ValidationResult) []ValidationResult {
	var out []ValidationResult
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Summary counts results per validation state.
func Summary(results []ValidationResult) map[ValidationState]int {
	counts := map[ValidationState]int{
		Valid: 0, BrokenFile: 0, BrokenSection: 0, MissingSource: 0,
	}
	for _, r := range results {
		counts[r.State]++
	}
	return counts
}

func (v *Validator) headingIndex(path string) (map[string]bool, error) {
	v.mu.Lock()
	cached, ok := v.heading[path]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		body = content
	}
	index := markdown.HeadingIndex(body)

	v.mu.Lock()
	v.heading[path] = index
	v.mu.Unlock()
	return index, nil
}

func availableSections(index map[string]bool) string {
	slugs := make([]string, 0, len(index))
	for slug := range index {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	if len(slugs) > 5 {
		slugs = slugs[:5]
	}
	return strings.Join(slugs, ", ")
}
