// Package advisor sequences the per-turn conversation flow: field
// extraction, completion check, and next-question generation.
package advisor

import (
	"context"
	"strings"

	"finpilot/internal/ai"
	"finpilot/internal/metrics"
	"finpilot/internal/profile"

	"log/slog"
)

const (
	welcomeMessage = "Welcome! I'll help you create your investment profile. To get started, what specific amount can you invest monthly? (e.g., $500, $1000, $2000)"

	completionMessage = "Perfect! I have all the information needed. Your investment profile is complete and ready for plan generation."
)

// Engine coordinates one conversation turn. It holds no per-session
// state; session persistence belongs to the caller.
type Engine struct {
	gateway ai.Gateway
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a conversation engine.
func New(gateway ai.Gateway, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		gateway: gateway,
		logger:  logger.With("component", "advisor"),
		metrics: m,
	}
}

// TurnResult is the outcome of a single conversation turn.
type TurnResult struct {
	Message  string
	Complete bool
	Answers  profile.Profile
}

// NextQuestion processes one inbound chat turn. The latest user
// message (if any) is run through the extractor first; the completion
// policy then gates whether a model call happens at all. Gateway
// failures degrade to a deterministic next question, never an error.
func (e *Engine) NextQuestion(ctx context.Context, history []Turn, answers profile.Profile) TurnResult {
	updated := answers
	if len(history) > 0 && history[len(history)-1].Role == RoleUser {
		updated = profile.Extract(history[len(history)-1].Message, answers)
	}

	if updated.Complete() {
		e.metrics.ChatTurns.WithLabelValues("complete").Inc()
		return TurnResult{Message: completionMessage, Complete: true, Answers: updated}
	}

	contextPrompt := buildContextPrompt(history, updated)
	if strings.HasPrefix(contextPrompt, initialPromptPrefix) {
		e.metrics.ChatTurns.WithLabelValues("welcome").Inc()
		return TurnResult{Message: welcomeMessage, Answers: updated}
	}

	text, err := e.gateway.GenerateText(ctx, questionInstruction(contextPrompt))
	if err != nil || strings.TrimSpace(text) == "" {
		e.logger.Warn("ai question generation failed, using fallback question", "error", err)
		e.metrics.Errors.WithLabelValues("advisor_gateway").Inc()
		e.metrics.ChatTurns.WithLabelValues("fallback").Inc()
		return TurnResult{Message: fallbackQuestion(updated), Answers: updated}
	}

	e.metrics.ChatTurns.WithLabelValues("question").Inc()
	return TurnResult{Message: strings.TrimSpace(text), Answers: updated}
}

// fallbackQuestion walks the profile in fixed field order and returns
// the canned question for the first missing field.
func fallbackQuestion(p profile.Profile) string {
	switch {
	case p.MonthlyInvestment == "":
		return "What amount can you invest monthly? (e.g., $500, $1000, $2000)"
	case p.RiskTolerance == "":
		return "What's your risk tolerance: low (safe), medium (balanced), or high (aggressive)?"
	case p.Goal == "":
		return "What's your primary financial goal: retirement, house down payment, education, or emergency fund?"
	case p.Preference == "":
		return "Investment preference: conservative (bonds/CDs), moderate (balanced funds), or aggressive (stocks)?"
	case p.Age == "":
		return "What's your age range? (20s, 30s, 40s, 50s+)"
	case p.Experience == "":
		return "Investment experience: beginner, intermediate, or advanced?"
	default:
		return "Great! I have enough information to create your investment profile."
	}
}
