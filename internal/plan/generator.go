package plan

import (
	"context"
	"strings"

	"finpilot/internal/ai"
	"finpilot/internal/metrics"
	"finpilot/internal/profile"

	"log/slog"
)

// Generator runs the one-shot plan flow: prompt, gateway call, parse,
// and deterministic fallback on any failure.
type Generator struct {
	gateway ai.Gateway
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGenerator creates a plan generator.
func NewGenerator(gateway ai.Gateway, logger *slog.Logger, m *metrics.Metrics) *Generator {
	return &Generator{
		gateway: gateway,
		logger:  logger.With("component", "plan"),
		metrics: m,
	}
}

// Generate produces an investment plan for a profile. A gateway
// failure or empty response drops straight to the fallback plan; the
// caller never sees an error from the AI subsystem.
func (g *Generator) Generate(ctx context.Context, p profile.Profile, feedback string) Plan {
	monthly := ParseAmount(p.MonthlyInvestment)
	prompt := buildPlanPrompt(p, monthly, feedback)

	text, err := g.gateway.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		g.logger.Warn("ai plan generation failed, using fallback", "error", err)
		g.metrics.Errors.WithLabelValues("plan_gateway").Inc()
		g.metrics.PlansGenerated.WithLabelValues("fallback").Inc()
		return FallbackPlan(monthly, p.RiskTolerance, p.Goal)
	}

	result := ParseResponse(text, monthly, p.RiskTolerance, p.Goal)
	source := "ai"
	if strings.HasPrefix(result.PlanID, "fallback_plan_") {
		g.logger.Warn("ai plan response unparsable, using fallback")
		source = "fallback"
	}
	g.metrics.PlansGenerated.WithLabelValues(source).Inc()
	return result
}
