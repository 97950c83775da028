// Package ambiguity finds vague or incomplete pitch deck sections and
// generates targeted clarification questions for them.
package ambiguity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bpkit/bpkit/internal/deck"
)

// Priority ranks how urgently a section needs clarification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// sectionPriority maps deck sections to clarification urgency. Sections
// that shape scope or money are high, polish is low.
var sectionPriority = map[deck.SectionID]Priority{
	deck.BusinessModel:  PriorityHigh,
	deck.MarketSize:     PriorityHigh,
	deck.Problem:        PriorityHigh,
	deck.Solution:       PriorityHigh,
	deck.Financials:     PriorityHigh,
	deck.Competition:    PriorityMedium,
	deck.WhyNow:         PriorityMedium,
	deck.CompanyPurpose: PriorityMedium,
	deck.Team:           PriorityLow,
}

// PriorityFor returns the clarification priority for a section,
// defaulting to medium for anything unmapped.
func PriorityFor(id deck.SectionID) Priority {
	if p, ok := sectionPriority[id]; ok {
		return p
	}
	return PriorityMedium
}

// shortSectionThreshold is the word count under which a non-empty
// section is considered likely incomplete.
const shortSectionThreshold = 20

// VagueSection is a section flagged for clarification with the reason
// it was flagged.
type VagueSection struct {
	Section  *deck.Section
	Priority Priority
	Reason   string
}

// Detect scans the deck for empty, vague, or too-short sections. When
// target is non-empty only that section is checked. Results come back
// ordered by priority, high first.
func Detect(d *deck.Deck, target deck.SectionID) []VagueSection {
	var candidates []*deck.Section
	if target != "" {
		if s := d.Section(target); s != nil {
			candidates = append(candidates, s)
		}
	} else {
		for _, id := range deck.SequoiaSections {
			if s := d.Section(id); s != nil {
				candidates = append(candidates, s)
			}
		}
	}

	var vague []VagueSection
	for _, s := range candidates {
		switch {
		case s.IsEmpty():
			vague = append(vague, VagueSection{
				Section:  s,
				Priority: PriorityFor(s.ID),
				Reason:   "section is empty or contains only placeholder text",
			})
		case len(s.VagueIndicators()) > 0:
			indicators := s.VagueIndicators()
			vague = append(vague, VagueSection{
				Section:  s,
				Priority: PriorityFor(s.ID),
				Reason:   fmt.Sprintf("vague language: %q", indicators[0]),
			})
		case s.WordCount() < shortSectionThreshold:
			vague = append(vague, VagueSection{
				Section:  s,
				Priority: PriorityFor(s.ID),
				Reason:   fmt.Sprintf("only %d words, likely incomplete", s.WordCount()),
			})
		}
	}

	sort.SliceStable(vague, func(i, j int) bool {
		return priorityRank[vague[i].Priority] < priorityRank[vague[j].Priority]
	})
	return vague
}

// Question is one clarification prompt for the user.
type Question struct {
	ID               string
	Text             string
	SectionID        deck.SectionID
	Priority         Priority
	SuggestedAnswers []string
	Answer           string
}

// Answered reports whether the user has responded.
func (q *Question) Answered() bool { return q.Answer != "" }

// questionTemplates holds the per-section prompt and canned answers.
// Every set ends with "Custom answer" so the interactive flow can offer
// free-form input.
var questionTemplates = map[deck.SectionID]struct {
	text    string
	answers []string
}{
	deck.Competition: {
		text: "Who are your top 3 direct competitors and what is your specific advantage over each?",
		answers: []string{
			"Airbnb, Vrbo, Booking.com - advantage is local authenticity",
			"Traditional hotel chains - advantage is lower prices",
		},
	},
	deck.BusinessModel: {
		text: "What are your target unit economics? (CAC, LTV, margins, payback period)",
		answers: []string{
			"CAC: $50, LTV: $300, Margin: 15%, Payback: 3 months",
			"CAC: $100, LTV: $250, Margin: 10%, Payback: 6 months",
		},
	},
	deck.MarketSize: {
		text: "What is your total addressable market (TAM) and serviceable addressable market (SAM)?",
		answers: []string{
			"TAM: $10B, SAM: $1B, targeting 5% market share in 5 years",
			"TAM: $50B, SAM: $5B, targeting 1% market share in 3 years",
		},
	},
	deck.Problem: {
		text: "What is the specific problem you're solving and who experiences it most acutely?",
		answers: []string{
			"High transaction costs for peer-to-peer rentals, affecting property owners",
			"Lack of trust in online marketplaces, affecting buyers",
		},
	},
	deck.Solution: {
		text: "What is your core solution and what makes it 10x better than alternatives?",
		answers: []string{
			"Platform with verified reviews and instant booking - 10x faster than traditional",
			"AI-powered matching that reduces search time by 80%",
		},
	},
	deck.WhyNow: {
		text: "Why is now the right time for this solution? What has changed?",
		answers: []string{
			"Remote work explosion increased demand for flexible housing by 300%",
			"New regulations enable our business model",
		},
	},
	deck.CompanyPurpose: {
		text: "What is your company's core mission in one sentence?",
		answers: []string{
			"Make travel more accessible and authentic for everyone",
			"Democratize access to financial services for underbanked populations",
		},
	},
	deck.Team: {
		text: "What makes your founding team uniquely qualified to solve this problem?",
		answers: []string{
			"10+ years combined experience in industry, previous successful exit",
			"Technical expertise (2x PhDs) + domain expertise (former industry exec)",
		},
	},
}

// QuestionFor builds the clarification question for a flagged section.
func QuestionFor(vs VagueSection, id string) Question {
	q := Question{
		ID:        id,
		SectionID: vs.Section.ID,
		Priority:  vs.Priority,
	}
	if tmpl, ok := questionTemplates[vs.Section.ID]; ok {
		q.Text = tmpl.text
		q.SuggestedAnswers = append(append([]string{}, tmpl.answers...), "Custom answer")
		return q
	}
	q.Text = fmt.Sprintf("Please provide details for the %q section.", vs.Section.Title)
	q.SuggestedAnswers = []string{"Custom answer"}
	return q
}

// Questions generates one question per vague section with sequential
// CLQ ids.
func Questions(vague []VagueSection) []Question {
	questions := make([]Question, 0, len(vague))
	for i, vs := range vague {
		questions = append(questions, QuestionFor(vs, fmt.Sprintf("CLQ%03d", i+1)))
	}
	return questions
}

// DefaultMaxQuestions caps how many questions one clarify run asks.
const DefaultMaxQuestions = 5

// Prioritize sorts questions high-to-low and truncates to max. A max
// of zero or less applies the default cap.
func Prioritize(questions []Question, max int) []Question {
	if max <= 0 {
		max = DefaultMaxQuestions
	}
	sorted := append([]Question{}, questions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityRank[sorted[i].Priority] < priorityRank[sorted[j].Priority]
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

// Apply appends the question's answer to its deck section. Empty
// content is replaced outright.
func Apply(d *deck.Deck, q Question) error {
	if !q.Answered() {
		return fmt.Errorf("question %s has no answer to apply", q.ID)
	}
	s := d.Section(q.SectionID)
	if s == nil {
		return fmt.Errorf("section %q not found for question %s", q.SectionID, q.ID)
	}
	content := q.Answer
	if !s.IsEmpty() {
		content = strings.TrimRight(s.Content, "\n") + "\n\n" + q.Answer
	}
	return d.UpdateSection(q.SectionID, content)
}
