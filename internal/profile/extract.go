package profile

import (
	"fmt"
	"regexp"
	"strings"
)

// Money patterns ordered most-specific to least-specific. The trailing
// bare-number catch-all means any digit sequence in an unrelated
// sentence is read as a monthly amount; the pattern order is part of
// the extraction contract.
var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:dollars?|bucks?|usd)`),
	regexp.MustCompile(`rs\.?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`invest\s*\$?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:per\s+month|monthly|each\s+month|every\s+month)`),
	regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:i\s+guess|guess|maybe|or\s+so)`),
	regexp.MustCompile(`(?:around|about|roughly)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d{2})?)`),
}

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{2})\s*(?:years?\s*old|yr|years?)`),
	regexp.MustCompile(`age\s*(?:is\s*)?(\d{2})`),
	regexp.MustCompile(`i'?m\s*(\d{2})`),
	regexp.MustCompile(`(\d{2})s`),
}

// bucket maps a category label to its trigger phrases. Buckets are
// tested in declaration order; the first category with any matching
// phrase wins, so earlier entries take precedence on ties.
type bucket struct {
	label    string
	keywords []string
}

var ageRanges = []bucket{
	{"20s", []string{"20s", "twenties", "early twenties", "late twenties"}},
	{"30s", []string{"30s", "thirties", "early thirties", "late thirties"}},
	{"40s", []string{"40s", "forties", "early forties", "late forties"}},
	{"50s", []string{"50s", "fifties", "early fifties", "late fifties"}},
	{"60+", []string{"60s", "sixties", "retirement age", "senior"}},
}

var incomeBuckets = []bucket{
	{"low", []string{"low income", "below 50k", "under 50", "limited income", "tight budget"}},
	{"medium", []string{"middle income", "50k to 100k", "average income", "decent salary"}},
	{"high", []string{"high income", "above 100k", "over 100", "well paid", "good salary"}},
	{"very high", []string{"very high income", "above 200k", "over 200", "wealthy", "rich"}},
}

var experienceBuckets = []bucket{
	{"beginner", []string{"beginner", "new to investing", "never invested", "starting out", "novice"}},
	{"intermediate", []string{"intermediate", "some experience", "few years", "moderate experience"}},
	{"advanced", []string{"advanced", "experienced", "expert", "many years", "professional"}},
}

var horizonBuckets = []bucket{
	{"short", []string{"short term", "1-3 years", "few years", "immediate", "soon"}},
	{"medium", []string{"medium term", "3-10 years", "several years", "mid term"}},
	{"long", []string{"long term", "10+ years", "many years", "retirement", "decades"}},
}

var riskBuckets = []bucket{
	{"low", []string{"low risk", "safe", "conservative", "stable", "secure", "cautious"}},
	{"medium", []string{"medium risk", "moderate", "balanced", "medium", "average"}},
	{"high", []string{"high risk", "aggressive", "risky", "growth", "volatile"}},
}

var preferenceBuckets = []bucket{
	{"conservative", []string{"conservative", "bonds", "cds", "safe investments", "fixed deposits"}},
	{"moderate", []string{"moderate", "balanced", "mixed", "diversified", "mutual funds"}},
	{"aggressive", []string{"aggressive", "stocks", "equity", "growth stocks", "high growth"}},
}

var goalBuckets = []bucket{
	{"retirement", []string{"retirement", "retire", "pension", "old age"}},
	{"house", []string{"house", "home", "property", "down payment", "mortgage"}},
	{"education", []string{"education", "school", "college", "university", "study"}},
	{"emergency", []string{"emergency", "emergency fund", "backup", "contingency"}},
}

// Extract scans a user message and fills every still-empty profile
// field. Populated fields are passed through untouched, so extraction
// is first-write-wins across turns. The function is pure: no external
// calls, and a message that matches nothing simply leaves the profile
// unchanged.
func Extract(message string, current Profile) Profile {
	updated := current
	lower := strings.ToLower(message)

	if current.MonthlyInvestment == "" {
		for _, re := range moneyPatterns {
			if m := re.FindStringSubmatch(lower); m != nil {
				updated.MonthlyInvestment = fmt.Sprintf("$%s per month", m[1])
				break
			}
		}
	}

	if current.Age == "" {
		for _, re := range agePatterns {
			if m := re.FindStringSubmatch(lower); m != nil {
				updated.Age = m[1] + " years"
				break
			}
		}
		// Decade keywords override a numeric match within the same
		// message: "in my 30s" stores the label "30s", not "30 years".
		for _, b := range ageRanges {
			if containsAny(lower, b.keywords) {
				updated.Age = b.label
				break
			}
		}
	}

	if current.Income == "" {
		if label, ok := matchBucket(lower, incomeBuckets); ok {
			updated.Income = label + " income"
		}
	}

	if current.Experience == "" {
		if label, ok := matchBucket(lower, experienceBuckets); ok {
			updated.Experience = label + " investor"
		}
	}

	if current.TimeHorizon == "" {
		if label, ok := matchBucket(lower, horizonBuckets); ok {
			updated.TimeHorizon = label + " term"
		}
	}

	if current.RiskTolerance == "" {
		if label, ok := matchBucket(lower, riskBuckets); ok {
			updated.RiskTolerance = label + " risk"
		}
	}

	if current.Preference == "" {
		if label, ok := matchBucket(lower, preferenceBuckets); ok {
			updated.Preference = label + " investments"
		}
	}

	if current.Goal == "" {
		if label, ok := matchBucket(lower, goalBuckets); ok {
			updated.Goal = label + " planning"
		}
	}

	return updated
}

func matchBucket(message string, buckets []bucket) (string, bool) {
	for _, b := range buckets {
		if containsAny(message, b.keywords) {
			return b.label, true
		}
	}
	return "", false
}

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}
