// Package plan builds, parses, and falls back to rule-based investment
// plans for a completed profile.
package plan

// Option is a single investment allocation inside a plan.
type Option struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Amount        int    `json:"amount"`
	Percentage    int    `json:"percentage"`
	Reason        string `json:"reason"`
	HoldingPeriod string `json:"holdingPeriod"`
	Risk          string `json:"risk"` // High | Medium | Low
	Color         string `json:"color,omitempty"`
}

// RiskBreakdown is the percentage split across risk levels.
type RiskBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Plan is a structured investment plan, immutable once returned.
type Plan struct {
	TotalAmount       int           `json:"totalAmount"`
	MonthlyInvestment int           `json:"monthlyInvestment"`
	Options           []Option      `json:"options"`
	RiskBreakdown     RiskBreakdown `json:"riskBreakdown"`
	Timeline          string        `json:"timeline"`
	ExpectedReturn    string        `json:"expectedReturn"`
	Recommendations   []string      `json:"recommendations"`
	PlanID            string        `json:"planId"`
	CreatedAt         string        `json:"createdAt"`
}

// Display palette; risk levels map onto fixed colors.
const (
	colorPrimary   = "#336699" // Lapis Lazuli
	colorSecondary = "#86BBD8" // Carolina Blue
	colorSuccess   = "#9EE493" // Light Green
	colorCharcoal  = "#2F4858" // Charcoal
	colorNyanza    = "#DAF7DC" // Nyanza
)

func riskColor(risk string) string {
	switch risk {
	case "High":
		return colorCharcoal
	case "Medium":
		return colorPrimary
	case "Low":
		return colorSuccess
	default:
		return colorSecondary
	}
}
