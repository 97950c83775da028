package trace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bpkit/bpkit/internal/constitution"
	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/semver"
)

// Conflict is a pair of principles pulling in opposite directions.
type Conflict struct {
	Constitution string
	PrincipleID  string
	Description  string
}

// Keyword pairs that contradict when asserted by different strategic
// principles.
var contradictionPairs = [][2]string{
	{"mobile", "desktop"},
	{"b2b", "b2c"},
	{"enterprise", "consumer"},
	{"free", "paid"},
	{"freemium", "paid-only"},
	{"self-service", "sales-led"},
	{"low-price", "premium"},
	{"fast", "thorough"},
	{"simple", "feature-rich"},
}

// DetectConflicts scans every strategic principle pair across different
// constitutions for contradictory keywords, in both directions.
func DetectConflicts(constitutions []*constitution.Constitution) []Conflict {
	var conflicts []Conflict

	for i, c1 := range constitutions {
		if c1.Kind != constitution.Strategic {
			continue
		}
		for _, c2 := range constitutions[i+1:] {
			if c2.Kind != constitution.Strategic {
				continue
			}
			for _, p1 := range c1.Principles {
				for _, p2 := range c2.Principles {
					t1 := strings.ToLower(p1.Rule + " " + p1.Title)
					t2 := strings.ToLower(p2.Rule + " " + p2.Title)
					for _, pair := range contradictionPairs {
						a, b := pair[0], pair[1]
						switch {
						case strings.Contains(t1, a) && strings.Contains(t2, b):
							conflicts = append(conflicts, conflict(c1.Name, p1.ID, c2.Name, p2.ID, a, b))
						case strings.Contains(t1, b) && strings.Contains(t2, a):
							conflicts = append(conflicts, conflict(c1.Name, p1.ID, c2.Name, p2.ID, b, a))
						}
					}
				}
			}
		}
	}
	return conflicts
}

func conflict(name1, p1, name2, p2, word1, word2 string) Conflict {
	return Conflict{
		Constitution: name1,
		PrincipleID:  p1,
		Description: fmt.Sprintf("%s#%s mentions '%s' but %s#%s mentions '%s'",
			name1, p1, word1, name2, p2, word2),
	}
}

// CheckCoverage returns the deck sections no constitution links back to,
// sorted by section id.
func CheckCoverage(d *deck.Deck, constitutions []*constitution.Constitution) []deck.SectionID {
	referenced := make(map[string]bool)
	for _, c := range constitutions {
		for _, link := range c.UpstreamLinks {
			if link.Anchor != "" {
				referenced[link.Anchor] = true
			}
		}
	}

	var gaps []deck.SectionID
	for i := range d.Sections {
		id := d.Sections[i].ID
		if !referenced[string(id)] {
			gaps = append(gaps, id)
		}
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps
}

// VersionMismatch records a constitution out of step with the deck.
type VersionMismatch struct {
	Constitution string
	Found        semver.Version
	Current      semver.Version
}

// CheckVersions requires every constitution version to exactly equal the
// deck version. Anything else is drift.
func CheckVersions(d *deck.Deck, constitutions []*constitution.Constitution) []VersionMismatch {
	var mismatches []VersionMismatch
	for _, c := range constitutions {
		if c.Version.Compare(d.Version) != 0 {
			mismatches = append(mismatches, VersionMismatch{
				Constitution: c.Name,
				Found:        c.Version,
				Current:      d.Version,
			})
		}
	}
	return mismatches
}

// DetectCycles finds circular dependencies between feature constitutions
// by following links into the features directory. Iterative DFS with an
// explicit frame stack, so pathological graphs cannot blow the goroutine
// stack. Each cycle is reported as the path from its first repeated node
// back to itself.
func DetectCycles(constitutions []*constitution.Constitution) [][]string {
	graph := make(map[string][]string, len(constitutions))
	for _, c := range constitutions {
		deps := make(map[string]bool)
		for _, link := range c.FeatureLinks {
			name := strings.TrimSuffix(filepath.Base(link.File), ".md")
			if name != c.Name {
				deps[name] = true
			}
		}
		sorted := make([]string, 0, len(deps))
		for name := range deps {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		graph[c.Name] = sorted
	}

	roots := make([]string, 0, len(graph))
	for name := range graph {
		roots = append(roots, name)
	}
	sort.Strings(roots)

	type frame struct {
		node string
		next int
	}

	var cycles [][]string
	visited := make(map[string]bool, len(graph))
	onStack := make(map[string]bool, len(graph))

	for _, root := range roots {
		if visited[root] {
			continue
		}
		stack := []frame{{node: root}}
		var path []string
		visited[root] = true
		onStack[root] = true
		path = append(path, root)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := graph[top.node]
			if top.next < len(neighbors) {
				n := neighbors[top.next]
				top.next++
				switch {
				case onStack[n]:
					start := indexOf(path, n)
					cycle := append(append([]string{}, path[start:]...), n)
					cycles = append(cycles, cycle)
				case !visited[n]:
					visited[n] = true
					onStack[n] = true
					path = append(path, n)
					stack = append(stack, frame{node: n})
				}
				continue
			}
			onStack[top.node] = false
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}

func indexOf(path []string, node string) int {
	for i, p := range path {
		if p == node {
			return i
		}
	}
	return 0
}

// Orphan is a strategic principle no feature ever references.
type Orphan struct {
	Constitution string
	PrincipleID  string
}

// OrphanedPrinciples finds strategic principles with no downstream
// reference. The reference key is "constitution-name#principle-id".
func OrphanedPrinciples(constitutions []*constitution.Constitution) []Orphan {
	referenced := make(map[string]bool)
	for _, c := range constitutions {
		for _, link := range c.UpstreamLinks {
			if link.Anchor == "" {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(link.File), ".md")
			referenced[name+"#"+link.Anchor] = true
		}
	}

	var orphans []Orphan
	for _, c := range constitutions {
		if c.Kind != constitution.Strategic {
			continue
		}
		for _, p := range c.Principles {
			if !referenced[c.Name+"#"+p.ID] {
				orphans = append(orphans, Orphan{Constitution: c.Name, PrincipleID: p.ID})
			}
		}
	}
	return orphans
}
