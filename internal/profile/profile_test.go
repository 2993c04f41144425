package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	full := Profile{
		MonthlyInvestment: "$1000 per month",
		Preference:        "moderate investments",
		RiskTolerance:     "medium risk",
		Goal:              "retirement planning",
	}
	assert.True(t, full.Complete())

	assert.False(t, Profile{MonthlyInvestment: "$1000 per month"}.Complete())
	assert.False(t, Profile{}.Complete())

	// Placeholder and too-short answers do not count.
	undef := full
	undef.Goal = "undefined"
	assert.False(t, undef.Complete())

	noise := full
	noise.Preference = "ok"
	assert.False(t, noise.Complete())

	padded := full
	padded.RiskTolerance = "  hi  "
	assert.False(t, padded.Complete())
}

func TestCompleteIgnoresOptionalFields(t *testing.T) {
	p := Profile{
		MonthlyInvestment: "$500 per month",
		Preference:        "aggressive investments",
		RiskTolerance:     "high risk",
		Goal:              "wealth building",
		// No optional fields at all.
	}
	assert.True(t, p.Complete())
}

func TestEmpty(t *testing.T) {
	assert.True(t, Profile{}.Empty())
	assert.False(t, Profile{Age: "30s"}.Empty())
}
