package advisor

import (
	"fmt"
	"strings"

	"finpilot/internal/profile"
)

// Turn is one entry in the conversation history, append-only and never
// mutated.
type Turn struct {
	Role    string `json:"role"` // "user" or "ai"
	Message string `json:"message"`
}

// RoleUser and RoleAdvisor are the two turn roles on the wire.
const (
	RoleUser    = "user"
	RoleAdvisor = "ai"
)

// Sentinel marker for a brand-new session; the engine special-cases it
// so no model call is spent on the opening question.
const initialPromptPrefix = "INITIAL_PROMPT:"

// buildContextPrompt composes a compact prompt from the last two turns
// and the current profile state. Only field labels and the recent tail
// go in, which bounds per-call token cost.
func buildContextPrompt(history []Turn, answers profile.Profile) string {
	if len(history) == 0 && answers.Empty() {
		return initialPromptPrefix + " Ask for monthly investment amount to start the profile collection process."
	}

	recent := history
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	var convo strings.Builder
	for _, turn := range recent {
		role := "Advisor"
		if turn.Role == RoleUser {
			role = "User"
		}
		fmt.Fprintf(&convo, "%s: %s\n", role, turn.Message)
	}

	var collected, coreMissing, optionalMissing []string

	appendField := func(label, value, missingLabel string, missing *[]string) {
		if value != "" {
			collected = append(collected, label+": "+value)
		} else {
			*missing = append(*missing, missingLabel)
		}
	}

	appendField("Amount", answers.MonthlyInvestment, "Monthly amount", &coreMissing)
	appendField("Preference", answers.Preference, "Investment preference", &coreMissing)
	appendField("Risk", answers.RiskTolerance, "Risk tolerance", &coreMissing)
	appendField("Goal", answers.Goal, "Financial goal", &coreMissing)
	appendField("Age", answers.Age, "Age", &optionalMissing)
	appendField("Income", answers.Income, "Income level", &optionalMissing)
	appendField("Experience", answers.Experience, "Investment experience", &optionalMissing)
	appendField("Horizon", answers.TimeHorizon, "Time horizon", &optionalMissing)

	conversation := convo.String()
	if conversation == "" {
		conversation = "Starting"
	}

	return fmt.Sprintf(`Profile Status:
Collected: %s
Core Missing: %s
Optional Missing: %s

Recent Chat:
%s

Task: Ask for the first core missing item, then optional items. If all core complete, acknowledge.`,
		joinOrNone(collected), joinOrNone(coreMissing), joinOrNone(optionalMissing), conversation)
}

// questionInstruction wraps the context prompt in the advisor
// instruction template sent to the model.
func questionInstruction(contextPrompt string) string {
	return fmt.Sprintf(`Financial advisor collecting investment profile. Required: 4 core + 4 optional fields:

CORE (Priority):
1. Monthly amount ($ number)
2. Investment preference (conservative/moderate/aggressive)
3. Risk tolerance (low/medium/high)
4. Financial goal (retirement/house/education/emergency)

OPTIONAL (Better profiling):
5. Age (years)
6. Income level (annual salary range)
7. Investment experience (beginner/intermediate/advanced)
8. Time horizon (short/medium/long term)

Context: %s

Ask ONE direct question for missing core info first, then optional. Be concise (1-2 sentences).

Examples:
- "What monthly amount can you invest? ($500, $1000, $2000)"
- "Risk tolerance: low/medium/high?"
- "What's your age range? (20s, 30s, 40s, 50s+)"
- "Investment experience: beginner/intermediate/advanced?"

Response: ONE focused question only.`, contextPrompt)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
