package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CriterionType says whether a criterion was derived from a concrete
// business metric or generated as a guided placeholder.
type CriterionType string

const (
	Derived     CriterionType = "derived"
	Placeholder CriterionType = "placeholder"
)

// SuccessCriterion is one measurable success condition for a feature.
type SuccessCriterion struct {
	ID         string
	Text       string
	Type       CriterionType
	SourceLink string

	// Set for derived criteria.
	Rationale  string
	Test       string
	Confidence float64

	// Set for placeholder criteria.
	BusinessGoal        string
	SuggestedApproaches []string
}

var (
	commissionRate = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:commission|fee)`)
	dollarAmount   = regexp.MustCompile(`\$(\d+(?:,\d+)?(?:\.\d+)?)`)
	scaleCount     = regexp.MustCompile(`(?i)([\d,]+)\s*(?:users|customers|transactions|bookings)`)
)

// SuccessCriteria derives concrete criteria from metrics named in the
// Business Model section and appends one guided placeholder for the
// goals a deck never quantifies. Derived rules fire in fixed order
// (commission, pricing, scale, criticality) so ids are stable.
func SuccessCriteria(businessModelText, productText, featureTitle, featureID string) []SuccessCriterion {
	var criteria []SuccessCriterion
	counter := 1

	if c := commissionCriterion(businessModelText, featureID, counter); c != nil {
		criteria = append(criteria, *c)
		counter++
	}
	if c := pricingCriterion(businessModelText, featureID, counter); c != nil {
		criteria = append(criteria, *c)
		counter++
	}
	if c := scaleCriterion(businessModelText+" "+productText, featureID, counter); c != nil {
		criteria = append(criteria, *c)
		counter++
	}
	if c := criticalityCriterion(featureTitle, featureID, counter); c != nil {
		criteria = append(criteria, *c)
		counter++
	}

	criteria = append(criteria, placeholderCriterion(featureTitle, featureID, counter))
	return criteria
}

func criterionID(featureID string, counter int) string {
	return fmt.Sprintf("SC-%s-%03d", featureID, counter)
}

func commissionCriterion(text, featureID string, counter int) *SuccessCriterion {
	m := commissionRate.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	pct := m[1]
	rate, _ := strconv.ParseFloat(pct, 64)
	return &SuccessCriterion{
		ID:         criterionID(featureID, counter),
		Text:       fmt.Sprintf("Commission calculation accurate to 0.01%% (verified against manual calculation for %s%% rate)", pct),
		Type:       Derived,
		SourceLink: "../deck/pitch-deck.md#business-model",
		Rationale:  fmt.Sprintf("Business model depends on %s%% commission - calculation errors directly impact revenue", pct),
		Test:       fmt.Sprintf("Unit tests verify commission = booking_amount * %.2f for all transaction types", rate/100),
		Confidence: 0.95,
	}
}

func pricingCriterion(text, featureID string, counter int) *SuccessCriterion {
	m := dollarAmount.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &SuccessCriterion{
		ID:         criterionID(featureID, counter),
		Text:       "Pricing display accurate to 2 decimal places",
		Type:       Derived,
		SourceLink: "../deck/pitch-deck.md#business-model",
		Rationale:  fmt.Sprintf("Business model involves $%s transactions - pricing must be precise", m[1]),
		Test:       "Pricing calculations never lose precision beyond 2 decimals",
		Confidence: 0.95,
	}
}

// Only counts at or above this read as a scale commitment worth a
// performance criterion.
const scaleThreshold = 10000

func scaleCriterion(text, featureID string, counter int) *SuccessCriterion {
	m := scaleCount.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	countStr := m[1]
	count, err := strconv.Atoi(strings.ReplaceAll(countStr, ",", ""))
	if err != nil || count < scaleThreshold {
		return nil
	}
	return &SuccessCriterion{
		ID:         criterionID(featureID, counter),
		Text:       fmt.Sprintf("System handles %s+ concurrent users with <2s response time", countStr),
		Type:       Derived,
		SourceLink: "../deck/pitch-deck.md#business-model",
		Rationale:  fmt.Sprintf("Target market size of %s users requires scalable performance", countStr),
		Test:       "Load testing with simulated user traffic validates response times",
		Confidence: 0.90,
	}
}

var criticalKeywords = []string{
	"payment", "transaction", "booking", "authentication",
	"authorization", "checkout",
}

func criticalityCriterion(featureTitle, featureID string, counter int) *SuccessCriterion {
	lower := strings.ToLower(featureTitle)
	critical := false
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			critical = true
			break
		}
	}
	if !critical {
		return nil
	}
	return &SuccessCriterion{
		ID:         criterionID(featureID, counter),
		Text:       "Feature availability >99.5% (measured monthly)",
		Type:       Derived,
		SourceLink: "../deck/pitch-deck.md#product",
		Rationale:  featureTitle + " is business-critical - downtime directly impacts revenue",
		Test:       "Uptime monitoring and incident tracking validate availability target",
		Confidence: 0.90,
	}
}

func placeholderCriterion(featureTitle, featureID string, counter int) SuccessCriterion {
	goal := inferBusinessGoal(featureTitle)
	return SuccessCriterion{
		ID:                  criterionID(featureID, counter),
		Text:                fmt.Sprintf("[Success criterion supporting %s] PLACEHOLDER", strings.ToLower(goal)),
		Type:                Placeholder,
		SourceLink:          "../deck/pitch-deck.md#business-model",
		BusinessGoal:        goal,
		SuggestedApproaches: suggestApproaches(featureTitle),
	}
}

var goalsByKeyword = []struct{ keyword, goal string }{
	{"booking", "Achieve sustainable booking volume"},
	{"payment", "Maximize payment success rate"},
	{"search", "Improve search conversion rate"},
	{"user", "Drive user registration and activation"},
	{"listing", "Increase listing creation rate"},
	{"review", "Encourage user engagement and trust"},
	{"notification", "Maintain user engagement"},
}

func inferBusinessGoal(featureTitle string) string {
	lower := strings.ToLower(featureTitle)
	for _, g := range goalsByKeyword {
		if strings.Contains(lower, g.keyword) {
			return g.goal
		}
	}
	return "Support business objectives"
}

func suggestApproaches(featureTitle string) []string {
	lower := strings.ToLower(featureTitle)
	switch {
	case strings.Contains(lower, "booking"):
		return []string{
			"Booking completion time <5 minutes",
			"Booking abandonment rate <20%",
			"Payment success rate >95%",
		}
	case strings.Contains(lower, "search"):
		return []string{
			"Search results returned in <1 second",
			"Search-to-click rate >40%",
			"Zero-result searches <10%",
		}
	case strings.Contains(lower, "payment"):
		return []string{
			"Payment processing time <30 seconds",
			"Payment failure rate <5%",
			"Refund processing time <24 hours",
		}
	case strings.Contains(lower, "user"), strings.Contains(lower, "registration"):
		return []string{
			"Registration completion rate >80%",
			"Email verification rate >70%",
			"Time to first action <5 minutes after registration",
		}
	default:
		return []string{
			"User satisfaction score >80% (post-feature survey)",
			"Feature adoption rate >60% within 30 days",
			"Task completion rate >90%",
		}
	}
}
