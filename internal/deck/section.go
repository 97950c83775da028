package deck

import "strings"

// SectionID identifies one of the ten canonical Sequoia pitch deck
// sections. Values double as the heading slug in the deck document.
type SectionID string

const (
	CompanyPurpose SectionID = "company-purpose"
	Problem        SectionID = "problem"
	Solution       SectionID = "solution"
	WhyNow         SectionID = "why-now"
	MarketSize     SectionID = "market-potential"
	Competition    SectionID = "competition"
	Product        SectionID = "product"
	BusinessModel  SectionID = "business-model"
	Team           SectionID = "team"
	Financials     SectionID = "financials"
)

// SequoiaSections lists the ten sections in canonical deck order.
var SequoiaSections = []SectionID{
	CompanyPurpose,
	Problem,
	Solution,
	WhyNow,
	MarketSize,
	Competition,
	Product,
	BusinessModel,
	Team,
	Financials,
}

var sectionTitles = map[SectionID]string{
	CompanyPurpose: "Company Purpose",
	Problem:        "Problem",
	Solution:       "Solution",
	WhyNow:         "Why Now",
	MarketSize:     "Market Size",
	Competition:    "Competition",
	Product:        "Product",
	BusinessModel:  "Business Model",
	Team:           "Team",
	Financials:     "Financials",
}

// Title returns the human-readable heading for the section.
func (id SectionID) Title() string {
	return sectionTitles[id]
}

// titleToID maps lowercase heading text to a section id. "Market Size"
// and "Market Potential" both identify the market section.
var titleToID = map[string]SectionID{
	"company purpose":  CompanyPurpose,
	"problem":          Problem,
	"solution":         Solution,
	"why now":          WhyNow,
	"market size":      MarketSize,
	"market potential": MarketSize,
	"competition":      Competition,
	"product":          Product,
	"business model":   BusinessModel,
	"team":             Team,
	"financials":       Financials,
}

// SectionIDForTitle resolves heading text to a canonical section id.
// Matching is case-insensitive.
func SectionIDForTitle(title string) (SectionID, bool) {
	id, ok := titleToID[strings.ToLower(strings.TrimSpace(title))]
	return id, ok
}

// ConstitutionFile names one of the four generated constitution documents.
type ConstitutionFile string

const (
	CompanyConstitution  ConstitutionFile = "company-constitution.md"
	ProductConstitution  ConstitutionFile = "product-constitution.md"
	MarketConstitution   ConstitutionFile = "market-constitution.md"
	BusinessConstitution ConstitutionFile = "business-constitution.md"
)

// ConstitutionFiles lists the four constitutions in generation order.
var ConstitutionFiles = []ConstitutionFile{
	CompanyConstitution,
	ProductConstitution,
	MarketConstitution,
	BusinessConstitution,
}

// SectionConstitutionMap routes each deck section to the constitution
// its content feeds during decomposition.
var SectionConstitutionMap = map[SectionID]ConstitutionFile{
	CompanyPurpose: CompanyConstitution,
	Problem:        CompanyConstitution,
	WhyNow:         CompanyConstitution,
	Solution:       ProductConstitution,
	Product:        ProductConstitution,
	MarketSize:     MarketConstitution,
	Competition:    MarketConstitution,
	BusinessModel:  BusinessConstitution,
	Team:           BusinessConstitution,
	Financials:     BusinessConstitution,
}

// SectionsFor returns the deck sections that feed a constitution,
// in canonical deck order.
func SectionsFor(file ConstitutionFile) []SectionID {
	var ids []SectionID
	for _, id := range SequoiaSections {
		if SectionConstitutionMap[id] == file {
			ids = append(ids, id)
		}
	}
	return ids
}

// Prompts returns the interactive clarification questions asked for the
// section during guided deck creation.
func (id SectionID) Prompts() []string {
	return sectionPrompts[id]
}

var sectionPrompts = map[SectionID][]string{
	CompanyPurpose: {
		"What is your company's core mission in one sentence?",
		"Example: 'AirBnB: Book rooms with locals, rather than hotels'",
	},
	Problem: {
		"What pain does your customer experience?",
		"How do customers address this issue today?",
	},
	Solution: {
		"How does your product make the customer's life better?",
		"What are the key use cases?",
		"Where does your product physically sit in the workflow?",
	},
	WhyNow: {
		"What has changed recently that creates this opportunity?",
		"What trends support your business now?",
	},
	MarketSize: {
		"What is your Total Addressable Market (TAM)?",
		"What is your Serviceable Available Market (SAM)?",
		"What is your Serviceable Obtainable Market (SOM)?",
		"Who is your target customer?",
	},
	Competition: {
		"Who are your main competitors?",
		"What are your competitive advantages?",
		"Why will you win?",
	},
	Product: {
		"What is your current product offering?",
		"What features are planned for v1, v2, v3?",
		"What is on the roadmap?",
	},
	BusinessModel: {
		"How do you make money?",
		"What is your pricing model?",
		"What is the average account size or LTV?",
		"How do you distribute and sell?",
	},
	Team: {
		"Who are the founders and what's their background?",
		"Who is on the management team?",
		"Who are your advisors or board members?",
	},
	Financials: {
		"What are your revenue projections (Year 1-3)?",
		"What are your key expenses?",
		"What is your cash flow situation?",
		"How much funding are you raising?",
	},
}
