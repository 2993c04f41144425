package profile

import "strings"

// Profile is the set of answers collected during the advisory
// conversation. Every field is an optional free-form string normalised
// at extraction time (e.g. "$1000 per month", "30s", "high risk").
type Profile struct {
	MonthlyInvestment string `json:"monthly_investment"`
	Preference        string `json:"preference"`
	RiskTolerance     string `json:"risk_tolerance"`
	Goal              string `json:"goal"`
	Age               string `json:"age"`
	Income            string `json:"income"`
	Experience        string `json:"experience"`
	TimeHorizon       string `json:"time_horizon"`
}

// Empty reports whether no field has been collected yet.
func (p Profile) Empty() bool {
	return p.MonthlyInvestment == "" && p.Preference == "" && p.RiskTolerance == "" &&
		p.Goal == "" && p.Age == "" && p.Income == "" && p.Experience == "" && p.TimeHorizon == ""
}

// Complete reports whether the four core fields carry meaningful
// answers. Optional fields (age, income, experience, time horizon)
// refine personalisation but never gate completion.
func (p Profile) Complete() bool {
	return validAnswer(p.MonthlyInvestment) &&
		validAnswer(p.Preference) &&
		validAnswer(p.RiskTolerance) &&
		validAnswer(p.Goal)
}

// validAnswer rejects placeholders and noise like "ok" or "yes".
func validAnswer(val string) bool {
	if val == "undefined" {
		return false
	}
	return len(strings.TrimSpace(val)) > 2
}
