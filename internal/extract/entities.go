package extract

import (
	"regexp"
	"sort"
	"strings"
)

// RelationType classifies an inferred relationship between entities.
type RelationType string

const (
	HasMany    RelationType = "has_many"
	BelongsTo  RelationType = "belongs_to"
	HasOne     RelationType = "has_one"
	ManyToMany RelationType = "many_to_many"
)

// Relationship links one entity to another.
type Relationship struct {
	Type        RelationType
	Target      string
	Description string
}

// Entity is a domain object detected in the deck. Names and
// relationships are extracted here; attributes, constraints, and states
// are only suggested, since the deck never specifies them precisely.
type Entity struct {
	Name          string // capitalized, e.g. "Booking"
	SourceLink    string
	Rationale     string
	Relationships []Relationship
	Attributes    string
	Constraints   string
	States        string
	Confidence    float64
}

// Domain nouns that usually map to a persisted entity.
var entityNouns = []string{
	"user", "customer", "account", "profile", "listing", "property",
	"product", "item", "booking", "reservation", "order", "payment",
	"transaction", "invoice", "receipt", "review", "rating", "comment",
	"message", "notification", "event", "appointment", "schedule",
	"calendar", "report", "document", "file", "photo", "image", "video",
	"category", "tag", "label", "location", "address", "organization",
	"company", "team", "member",
}

var roleNouns = []string{
	"guest", "host", "admin", "owner", "manager", "staff", "customer",
	"client", "vendor", "supplier", "partner",
}

// Entities extracts domain entities from the Product, Solution, and
// Business Model sections. Output is sorted by name for determinism.
func Entities(productText, solutionText, businessModelText string) []Entity {
	combined := productText + "\n" + solutionText + "\n" + businessModelText

	names := detectEntityNames(combined)
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	entities := make([]Entity, 0, len(sorted))
	for _, name := range sorted {
		entities = append(entities, Entity{
			Name:          name,
			SourceLink:    "../deck/pitch-deck.md#product",
			Rationale:     entityRationale(name),
			Relationships: inferRelationships(name, combined, names),
			Attributes:    suggestAttributes(name),
			Constraints:   suggestConstraints(name),
			States:        suggestStates(name),
			Confidence:    0.80,
		})
	}
	return entities
}

func detectEntityNames(text string) map[string]bool {
	names := make(map[string]bool)
	for _, noun := range append(append([]string{}, entityNouns...), roleNouns...) {
		re := regexp.MustCompile(`(?i)\b` + noun + `(?:s)?\b`)
		if re.MatchString(text) {
			names[capitalize(noun)] = true
		}
	}
	return names
}

func inferRelationships(name, text string, all map[string]bool) []Relationship {
	var rels []Relationship
	lower := strings.ToLower(name)

	// "users have bookings" reads as User has_many Booking.
	hasMany := regexp.MustCompile(`(?i)\b` + lower + `(?:s)?\s+(?:have|has|own|create|manage)\s+(\w+)`)
	for _, m := range hasMany.FindAllStringSubmatch(text, -1) {
		target := capitalize(strings.ToLower(strings.TrimSuffix(m[1], "s")))
		if all[target] && target != name {
			rels = append(rels, Relationship{
				Type:        HasMany,
				Target:      target,
				Description: "inferred from 'have/own' pattern",
			})
		}
	}

	// "bookings belong to users" reads as Booking belongs_to User.
	belongsTo := regexp.MustCompile(`(?i)\b` + lower + `(?:s)?\s+(?:belong to|is owned by|created by)\s+(\w+)`)
	for _, m := range belongsTo.FindAllStringSubmatch(text, -1) {
		target := capitalize(strings.ToLower(strings.TrimSuffix(m[1], "s")))
		if all[target] && target != name {
			rels = append(rels, Relationship{
				Type:        BelongsTo,
				Target:      target,
				Description: "inferred from 'belong to' pattern",
			})
		}
	}

	if len(rels) == 0 && name != "User" && all["User"] {
		rels = append(rels, Relationship{
			Type:        BelongsTo,
			Target:      "User",
			Description: "generic user association",
		})
	}
	return rels
}

func entityRationale(name string) string {
	rationales := map[string]string{
		"User":         "Core user role for platform",
		"Listing":      "Central entity representing items/properties",
		"Booking":      "Represents transactions/reservations",
		"Payment":      "Handles financial transactions",
		"Review":       "User-generated feedback",
		"Message":      "Communication between users",
		"Notification": "System-generated alerts",
	}
	if r, ok := rationales[name]; ok {
		return r
	}
	return "Domain entity for " + strings.ToLower(name) + " management"
}

const commonAttributes = "id, created_at, updated_at"

func suggestAttributes(name string) string {
	suggestions := map[string]string{
		"User":    commonAttributes + ", email, name, role",
		"Listing": commonAttributes + ", title, description, price",
		"Booking": commonAttributes + ", check_in_date, check_out_date, status, total_price",
		"Payment": commonAttributes + ", amount, currency, status, transaction_id",
		"Review":  commonAttributes + ", rating, comment, verified",
	}
	if s, ok := suggestions[name]; ok {
		return s
	}
	return commonAttributes
}

func suggestConstraints(name string) string {
	constraints := map[string]string{
		"User":    "email format validation, unique email",
		"Listing": "price > 0, title max length 200",
		"Booking": "check_in < check_out, total_price > 0",
		"Payment": "amount > 0, valid currency code",
		"Review":  "rating 1-5, comment max length 1000",
	}
	if c, ok := constraints[name]; ok {
		return c
	}
	return "Define validation rules"
}

func suggestStates(name string) string {
	states := map[string]string{
		"User":    "registered, verified, active, suspended",
		"Listing": "draft, published, booked, archived",
		"Booking": "PENDING, CONFIRMED, ACTIVE, COMPLETED, CANCELLED",
		"Payment": "pending, processing, completed, failed, refunded",
		"Review":  "pending, published, flagged, removed",
	}
	if s, ok := states[name]; ok {
		return s
	}
	return "Define entity states"
}
