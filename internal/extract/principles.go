// Package extract implements the heuristic extraction passes that turn
// pitch deck prose into structured principles, features, entities, and
// success criteria. Everything here is pattern-driven: each match carries
// a confidence reflecting how reliable its source pattern is.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bpkit/bpkit/internal/deck"
)

// PrincipleType distinguishes first principles from supporting ones.
type PrincipleType string

const (
	Strategic PrincipleType = "strategic"
	Tactical  PrincipleType = "tactical"
)

// Principle is one extracted business principle.
type Principle struct {
	ID         string
	Text       string
	Type       PrincipleType
	Source     deck.SectionID
	Confidence float64
	Rationale  string
}

type pattern struct {
	name       string
	re         *regexp.Regexp
	confidence float64
	// useMatch keeps the matched fragment as the principle text instead
	// of the whole sentence.
	useMatch bool
}

var principlePatterns = []pattern{
	{
		name:       "value-prop",
		re:         regexp.MustCompile(`\b([A-Z][A-Z\s]{2,}[A-Z])\b`),
		confidence: 0.85,
		useMatch:   true,
	},
	{
		name:       "numeric-constraint",
		re:         regexp.MustCompile(`(?i)(\d+(?:\.\d+)?%?\s*(?:commission|fee|rate|percent|margin|of|users|customers|revenue))`),
		confidence: 0.90,
	},
	{
		name:       "comparative",
		re:         regexp.MustCompile(`(?i)\b(better|cheaper|faster|easier|more|less|superior|compared to|than|vs\.?)\s+\w+`),
		confidence: 0.75,
	},
	{
		name:       "imperative",
		re:         regexp.MustCompile(`(?i)\b(must|ensure|require|should|need to|will|guarantee|maintain)\s+\w+`),
		confidence: 0.80,
	},
	{
		name:       "market-number",
		re:         regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?(?:\s*(?:million|billion|thousand|M|B|K))?\s*(?:users|customers|people|businesses|market|revenue|\$))`),
		confidence: 0.85,
		useMatch:   true,
	},
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)
	punctStrip    = regexp.MustCompile(`[.,;:!?]`)
	bulletLine    = regexp.MustCompile(`^\s*(?:[-*\x{2022}]\s+(.+)|\d+\.\s+(.+))$`)
)

const maxSentenceLen = 200

// Principles extracts principles from section text using the heuristic
// pattern set. Near-duplicate statements are collapsed, ids are assigned
// sequentially in extraction order.
func Principles(text string, source deck.SectionID, ptype PrincipleType) []Principle {
	var out []Principle
	counter := 1

	for _, sentence := range splitSentences(text) {
		for _, p := range principlePatterns {
			for _, m := range p.re.FindAllStringSubmatch(sentence, -1) {
				statement := sentence
				if p.useMatch {
					statement = strings.TrimSpace(m[1])
				} else if len(sentence) > maxSentenceLen {
					continue
				}
				out = append(out, Principle{
					ID:         fmt.Sprintf("principle-%03d", counter),
					Text:       strings.TrimSpace(statement),
					Type:       ptype,
					Source:     source,
					Confidence: p.confidence,
				})
				counter++
			}
		}
	}
	return dedupePrinciples(out)
}

// BulletPrinciples extracts one principle per bullet item. Bullets are an
// author's own summary, so each keeps its literal text.
func BulletPrinciples(text string, source deck.SectionID) []Principle {
	var out []Principle
	counter := 1

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
		out = append(out, Principle{
			ID:         fmt.Sprintf("principle-%03d", counter),
			Text:       content,
			Type:       Strategic,
			Source:     source,
			Confidence: 0.75,
		})
		counter++
	}
	return out
}

var sectionRationales = map[deck.SectionID]string{
	deck.CompanyPurpose: "Defines core mission and organizational identity",
	deck.Problem:        "Addresses fundamental customer pain point",
	deck.Solution:       "Core value proposition differentiator",
	deck.WhyNow:         "Market timing and strategic opportunity",
	deck.MarketSize:     "Market opportunity validation",
	deck.Competition:    "Competitive positioning requirement",
	deck.Product:        "Product feature requirement",
	deck.BusinessModel:  "Business model constraint",
	deck.Team:           "Team capability requirement",
	deck.Financials:     "Financial target or constraint",
}

// WithRationale fills the principle's rationale from its source section.
func WithRationale(p Principle) Principle {
	if r, ok := sectionRationales[p.Source]; ok {
		p.Rationale = r
	} else {
		p.Rationale = "Strategic business requirement"
	}
	return p
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}

func dedupePrinciples(ps []Principle) []Principle {
	seen := make(map[string]bool, len(ps))
	out := ps[:0]
	for _, p := range ps {
		key := punctStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(p.Text)), "")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
