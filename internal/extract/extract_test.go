package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpkit/bpkit/internal/deck"
)

func TestPrinciples_PatternMix(t *testing.T) {
	text := "We charge a 10% commission on each transaction. SAVE MONEY when traveling abroad."

	ps := Principles(text, deck.Solution, Strategic)
	require.NotEmpty(t, ps)

	var texts []string
	for _, p := range ps {
		texts = append(texts, p.Text)
	}
	assert.Contains(t, texts, "SAVE MONEY")

	foundNumeric := false
	for _, p := range ps {
		if p.Confidence == 0.90 {
			foundNumeric = true
			assert.Contains(t, p.Text, "commission")
		}
		assert.Equal(t, deck.Solution, p.Source)
		assert.Equal(t, Strategic, p.Type)
	}
	assert.True(t, foundNumeric, "numeric constraint pattern should match")
}

func TestPrinciples_Dedupe(t *testing.T) {
	text := "We must scale fast. We must scale fast! Something else that is cheaper than rivals."
	ps := Principles(text, deck.Problem, Strategic)

	seen := map[string]int{}
	for _, p := range ps {
		seen[p.Text]++
	}
	for text, n := range seen {
		assert.Equal(t, 1, n, "duplicate principle %q", text)
	}
}

func TestBulletPrinciples(t *testing.T) {
	text := "- User registration\n- Listing management\n* Booking system\n1. Payment flow\nshort\n- ok"

	ps := BulletPrinciples(text, deck.Product)
	require.Len(t, ps, 4)
	assert.Equal(t, "principle-001", ps[0].ID)
	assert.Equal(t, "User registration", ps[0].Text)
	assert.Equal(t, 0.75, ps[0].Confidence)
	assert.Equal(t, "Payment flow", ps[3].Text)
}

func TestWithRationale(t *testing.T) {
	p := WithRationale(Principle{Source: deck.BusinessModel})
	assert.Equal(t, "Business model constraint", p.Rationale)

	p = WithRationale(Principle{Source: deck.SectionID("unknown")})
	assert.Equal(t, "Strategic business requirement", p.Rationale)
}

func TestFeatures_BulletsAndCaps(t *testing.T) {
	product := "- User registration\n- Listing management\n- Booking system"
	solution := "Users can search listings and track bookings with the dashboard."

	fs := Features(product, solution)
	require.NotEmpty(t, fs)
	assert.LessOrEqual(t, len(fs), 10)

	// Bullets win the top priority slots.
	assert.Equal(t, P1, fs[0].Priority)
	assert.Equal(t, 0.85, fs[0].Confidence)
	assert.Equal(t, "user-registration", fs[0].Name)
	assert.Equal(t, "001", fs[0].ID)

	for i := 1; i < len(fs); i++ {
		assert.GreaterOrEqual(t, fs[i-1].Confidence, fs[i].Confidence)
	}
}

func TestFeatures_PriorityByRank(t *testing.T) {
	product := "- Feature alpha one\n- Feature beta two\n- Feature gamma three\n- Feature delta four\n- Feature epsilon five\n- Feature zeta six\n- Feature eta seven\n- Feature theta eight"
	fs := Features(product, "")
	require.GreaterOrEqual(t, len(fs), 8)

	assert.Equal(t, P1, fs[0].Priority)
	assert.Equal(t, P1, fs[2].Priority)
	assert.Equal(t, P2, fs[3].Priority)
	assert.Equal(t, P2, fs[6].Priority)
	assert.Equal(t, P3, fs[7].Priority)
}

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "user-management", KebabCase("User Management"))
	assert.Equal(t, "a-b-c", KebabCase("  A   b C!  "))
	assert.Equal(t, "", KebabCase("!!!"))
}

func TestEntities_Basic(t *testing.T) {
	product := "Users create listings and receive bookings."
	solution := "Connect guests with hosts."
	business := "10% commission on transactions."

	es := Entities(product, solution, business)
	require.NotEmpty(t, es)

	names := map[string]Entity{}
	for _, e := range es {
		names[e.Name] = e
	}
	assert.Contains(t, names, "User")
	assert.Contains(t, names, "Listing")
	assert.Contains(t, names, "Booking")
	assert.Contains(t, names, "Guest")
	assert.Contains(t, names, "Host")

	// "Users ... create listings" infers User has_many Listing.
	var hasListing bool
	for _, r := range names["User"].Relationships {
		if r.Type == HasMany && r.Target == "Listing" {
			hasListing = true
		}
	}
	assert.True(t, hasListing)

	// Non-user entities default to a User association.
	require.NotEmpty(t, names["Transaction"].Relationships)
	assert.Equal(t, BelongsTo, names["Transaction"].Relationships[0].Type)
	assert.Equal(t, "User", names["Transaction"].Relationships[0].Target)
}

func TestEntities_Deterministic(t *testing.T) {
	a := Entities("users and bookings", "payments", "")
	b := Entities("users and bookings", "payments", "")
	assert.Equal(t, a, b)
}

func TestSuccessCriteria_Derived(t *testing.T) {
	business := "10% commission on each transaction. $70/night average. 50,000 users in year one."
	product := "Booking system for travelers."

	cs := SuccessCriteria(business, product, "Booking System", "004")
	require.Len(t, cs, 5)

	assert.Equal(t, "SC-004-001", cs[0].ID)
	assert.Equal(t, Derived, cs[0].Type)
	assert.Contains(t, cs[0].Text, "10% rate")
	assert.Contains(t, cs[0].Test, "0.10")

	assert.Contains(t, cs[1].Rationale, "$70")
	assert.Contains(t, cs[2].Text, "50,000+")

	// "Booking" is a critical feature.
	assert.Contains(t, cs[3].Text, "availability")

	last := cs[4]
	assert.Equal(t, Placeholder, last.Type)
	assert.Equal(t, "Achieve sustainable booking volume", last.BusinessGoal)
	assert.Len(t, last.SuggestedApproaches, 3)
}

func TestSuccessCriteria_PlaceholderOnly(t *testing.T) {
	cs := SuccessCriteria("We sell things.", "A widget.", "Widget Catalog", "001")
	require.Len(t, cs, 1)
	assert.Equal(t, Placeholder, cs[0].Type)
	assert.Equal(t, "SC-001-001", cs[0].ID)
	assert.Equal(t, "Support business objectives", cs[0].BusinessGoal)
}

func TestSuccessCriteria_ScaleBelowThreshold(t *testing.T) {
	cs := SuccessCriteria("500 users pay us.", "", "Reports", "002")
	for _, c := range cs {
		assert.NotContains(t, c.Text, "concurrent users")
	}
}
