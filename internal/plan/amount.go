package plan

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultMonthlyAmount = 5000

var digitsRegex = regexp.MustCompile(`\d+`)

// ParseAmount turns a collected amount string into whole currency
// units. Bucketed range phrases resolve to a representative value and
// take precedence over naive digit extraction, even when the string
// also contains digits; otherwise the first integer found wins.
// Absent or unparseable input yields the default.
func ParseAmount(amount string) int {
	if amount == "" || amount == "undefined" {
		return defaultMonthlyAmount
	}

	lower := strings.ToLower(strings.TrimSpace(amount))

	switch {
	case strings.Contains(lower, "$100-500"):
		return 300
	case strings.Contains(lower, "$500-1000") || strings.Contains(lower, "$500-1,000"):
		return 750
	case strings.Contains(lower, "$1000-2000") || strings.Contains(lower, "$1,000-2,000"):
		return 1500
	case strings.Contains(lower, "more than $2000") || strings.Contains(lower, "more than $2,000"):
		return 3000
	}

	if m := digitsRegex.FindString(strings.ReplaceAll(lower, ",", "")); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}

	return defaultMonthlyAmount
}
