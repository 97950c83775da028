package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bpkit/bpkit/internal/deck"
)

// Priority buckets features by confidence rank.
type Priority string

const (
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Feature is an MVP feature detected in the Product or Solution section.
type Feature struct {
	ID          string
	Name        string // kebab-case
	Title       string
	Description string
	Priority    Priority
	Source      deck.SectionID
	Confidence  float64
	Keywords    []string
}

// Verbs whose "verb + object" form reads as a product capability.
var actionVerbs = []string{
	"create", "manage", "book", "search", "browse", "upload", "download",
	"send", "receive", "process", "track", "view", "edit", "delete",
	"share", "export", "import", "connect", "integrate", "analyze",
	"report", "notify", "approve", "reject", "review", "rate",
}

// Nouns that commonly name a whole feature area on their own.
var featureKeywords = []string{
	"user", "account", "profile", "listing", "product", "booking",
	"reservation", "payment", "transaction", "search", "filter",
	"dashboard", "analytics", "report", "notification", "message",
	"review", "rating", "comment", "feed", "timeline", "calendar",
	"schedule", "settings", "preferences", "authentication",
	"authorization", "registration",
}

const maxFeatures = 10

var (
	featurePrefixStrip = regexp.MustCompile(`(?i)^(feature:|capability:|component:)\s*`)
	nonWordStrip       = regexp.MustCompile(`[^\w\s-]`)
	spaceRuns          = regexp.MustCompile(`\s+`)
	hyphenRuns         = regexp.MustCompile(`-+`)
)

// Features detects MVP features from the Product and Solution sections.
// Bullets carry the highest confidence, then verb phrases, then bare
// keyword mentions. The result is capped at ten entries, keeping the
// highest-confidence ones, with priorities assigned by confidence rank.
func Features(productText, solutionText string) []Feature {
	var features []Feature
	features = append(features, bulletFeatures(productText, deck.Product)...)
	features = append(features, bulletFeatures(solutionText, deck.Solution)...)
	features = append(features, verbFeatures(productText, deck.Product)...)
	features = append(features, keywordFeatures(solutionText, deck.Solution)...)

	features = dedupeFeatures(features)
	features = rankFeatures(features)

	if len(features) > maxFeatures {
		features = features[:maxFeatures]
	}
	for i := range features {
		features[i].ID = fmt.Sprintf("%03d", i+1)
	}
	return features
}

func bulletFeatures(text string, source deck.SectionID) []Feature {
	var out []Feature
	for _, line := range strings.Split(text, "\n") {
		m := bulletLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		content := m[1]
		if content == "" {
			content = m[2]
		}
		content = strings.TrimSpace(content)
		if len(content) <= 5 {
			continue
		}
		name := featureName(content)
		if name == "" {
			continue
		}
		out = append(out, Feature{
			Name:        KebabCase(name),
			Title:       name,
			Description: content,
			Source:      source,
			Confidence:  0.85,
			Keywords:    []string{strings.ToLower(name)},
		})
	}
	return out
}

func verbFeatures(text string, source deck.SectionID) []Feature {
	var out []Feature
	for _, verb := range actionVerbs {
		re := regexp.MustCompile(`(?i)\b` + verb + `\s+(\w+(?:\s+\w+)?)`)
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			object := m[1]
			title := capitalize(verb) + " " + capitalizeWords(object)
			out = append(out, Feature{
				Name:        KebabCase(title),
				Title:       title,
				Description: "Feature: " + title,
				Source:      source,
				Confidence:  0.70,
				Keywords:    []string{verb, strings.ToLower(object)},
			})
		}
	}
	return out
}

func keywordFeatures(text string, source deck.SectionID) []Feature {
	var out []Feature
	for _, kw := range featureKeywords {
		re := regexp.MustCompile(`(?i)\b` + kw + `(?:s)?\b`)
		if !re.MatchString(text) {
			continue
		}
		title := capitalize(kw) + " Management"
		out = append(out, Feature{
			Name:        KebabCase(title),
			Title:       title,
			Description: "Feature: " + title,
			Source:      source,
			Confidence:  0.60,
			Keywords:    []string{kw},
		})
	}
	return out
}

// featureName trims a bullet line down to at most four words with
// punctuation removed. Returns "" when nothing substantive remains.
func featureName(text string) string {
	text = featurePrefixStrip.ReplaceAllString(text, "")
	words := strings.Fields(text)
	if len(words) > 4 {
		words = words[:4]
	}
	name := strings.TrimSpace(nonWordStrip.ReplaceAllString(strings.Join(words, " "), ""))
	if len(name) <= 3 {
		return ""
	}
	return name
}

// KebabCase lowercases text and joins words with hyphens.
func KebabCase(text string) string {
	text = nonWordStrip.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, "-")
	text = strings.ToLower(text)
	text = hyphenRuns.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

func dedupeFeatures(fs []Feature) []Feature {
	seen := make(map[string]bool, len(fs))
	out := fs[:0]
	for _, f := range fs {
		key := strings.ToLower(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// rankFeatures orders by confidence (stable, so source order breaks
// ties) and assigns rank-based priorities: top 3 P1, next 4 P2, rest P3.
func rankFeatures(fs []Feature) []Feature {
	sort.SliceStable(fs, func(i, j int) bool {
		return fs[i].Confidence > fs[j].Confidence
	})
	for i := range fs {
		switch {
		case i < 3:
			fs[i].Priority = P1
		case i < 7:
			fs[i].Priority = P2
		default:
			fs[i].Priority = P3
		}
	}
	return fs
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
