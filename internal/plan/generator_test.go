package plan

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"finpilot/internal/metrics"
	"finpilot/internal/profile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway implements ai.Gateway for testing.
type mockGateway struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func newTestGenerator(gw *mockGateway) *Generator {
	return NewGenerator(gw, slog.New(slog.DiscardHandler), metrics.New("test", prometheus.NewRegistry()))
}

func TestGenerateUsesAIPlan(t *testing.T) {
	gw := &mockGateway{response: wellFormedResponse}
	g := newTestGenerator(gw)

	p := g.Generate(context.Background(), profile.Profile{
		MonthlyInvestment: "$1000 per month",
		RiskTolerance:     "high risk",
		Goal:              "retirement planning",
		Preference:        "aggressive investments",
	}, "")

	assert.True(t, strings.HasPrefix(p.PlanID, "ai_plan_"))
	assert.Equal(t, 1000, p.MonthlyInvestment)

	require.Len(t, gw.prompts, 1)
	assert.Contains(t, gw.prompts[0], "PRIMARY FINANCIAL GOAL: retirement planning")
	assert.Contains(t, gw.prompts[0], "Monthly Investment Amount: $1000 USD")
	assert.Contains(t, gw.prompts[0], "AGGRESSIVE INVESTOR")
}

func TestGenerateFallsBackOnGatewayError(t *testing.T) {
	gw := &mockGateway{err: errors.New("quota exceeded")}
	g := newTestGenerator(gw)

	p := g.Generate(context.Background(), profile.Profile{
		MonthlyInvestment: "$1000 per month",
		RiskTolerance:     "conservative",
		Goal:              "emergency fund planning",
	}, "")

	assert.True(t, strings.HasPrefix(p.PlanID, "fallback_plan_"))
	assert.Equal(t, RiskBreakdown{High: 0, Medium: 20, Low: 80}, p.RiskBreakdown)
	assert.Equal(t, "1-2 years", p.Timeline)
}

func TestGenerateFallsBackOnEmptyResponse(t *testing.T) {
	gw := &mockGateway{response: "   "}
	g := newTestGenerator(gw)

	p := g.Generate(context.Background(), profile.Profile{RiskTolerance: "moderate"}, "")
	assert.True(t, strings.HasPrefix(p.PlanID, "fallback_plan_"))
	// No amount collected: the default applies.
	assert.Equal(t, 5000, p.MonthlyInvestment)
}

func TestGenerateIncludesFeedback(t *testing.T) {
	gw := &mockGateway{response: wellFormedResponse}
	g := newTestGenerator(gw)

	g.Generate(context.Background(), profile.Profile{
		MonthlyInvestment: "$500-1000",
		RiskTolerance:     "medium risk",
		Goal:              "house planning",
	}, "less crypto please")

	require.Len(t, gw.prompts, 1)
	assert.Contains(t, gw.prompts[0], "Additional Feedback: less crypto please")
	assert.Contains(t, gw.prompts[0], "Monthly Investment Amount: $750 USD")
}
