package plan

import (
	"fmt"
	"strconv"
	"strings"

	"finpilot/internal/profile"
)

// buildPlanPrompt encodes the allocation policy as instructions for the
// model: goal first, risk tolerance second. It requests a strict JSON
// shape so the response parser can map it into a Plan.
func buildPlanPrompt(p profile.Profile, monthly int, feedback string) string {
	age := p.Age
	if age == "" {
		age = "30"
	}

	var sb strings.Builder
	sb.WriteString("You are an expert financial advisor AI. Create a HIGHLY PERSONALIZED investment plan that PRIMARILY considers the client's FINANCIAL GOAL, then balances with risk tolerance.\n\n")
	sb.WriteString("CRITICAL: Investment strategy must FIRST match the GOAL, then adjust for risk comfort. Different goals require completely different approaches regardless of risk tolerance.\n\n")

	sb.WriteString("Client Profile:\n")
	fmt.Fprintf(&sb, "- Monthly Investment Amount: $%d USD\n", monthly)
	fmt.Fprintf(&sb, "- Age: %s years\n", age)
	fmt.Fprintf(&sb, "- PRIMARY FINANCIAL GOAL: %s (THIS DRIVES THE STRATEGY)\n", p.Goal)
	fmt.Fprintf(&sb, "- Risk Tolerance: %s (secondary consideration)\n", p.RiskTolerance)
	fmt.Fprintf(&sb, "- Investment Preference: %s\n", p.Preference)
	fmt.Fprintf(&sb, "- Income Level: %s\n", p.Income)
	fmt.Fprintf(&sb, "- Investment Experience: %s\n", p.Experience)
	if feedback != "" {
		fmt.Fprintf(&sb, "- Additional Feedback: %s\n", feedback)
	}
	sb.WriteString("\n")

	sb.WriteString(riskGuidance(p.RiskTolerance))
	sb.WriteString("\n")

	sb.WriteString("GOAL-BASED STRATEGY RULES:\n")
	sb.WriteString("1. EMERGENCY FUND: Always conservative (80% low risk) - liquidity is key, not growth\n")
	sb.WriteString("2. HOME PURCHASE: Timeline matters more than risk tolerance\n")
	sb.WriteString("   - Short-term (1-3 years): 60% low risk regardless of risk tolerance\n")
	sb.WriteString("   - Long-term (5+ years): Can be more aggressive\n")
	sb.WriteString("3. RETIREMENT: Age-based allocation\n")
	sb.WriteString("   - Under 35: Can be aggressive (60% high risk) even if moderate risk tolerance\n")
	sb.WriteString("   - 35-50: Balanced approach\n")
	sb.WriteString("   - Over 50: Conservative regardless of stated risk tolerance\n")
	sb.WriteString("4. WEALTH BUILDING: Risk tolerance becomes primary factor\n\n")

	sb.WriteString("INVESTMENT SELECTION RULES:\n")
	sb.WriteString("- EMERGENCY FUND: Savings accounts, liquid funds, short-term FDs only\n")
	sb.WriteString("- HOME PURCHASE (short): FDs, debt funds, conservative hybrid funds\n")
	sb.WriteString("- HOME PURCHASE (long): Large-cap funds, balanced funds, some growth\n")
	sb.WriteString("- RETIREMENT (young): Small-cap, mid-cap, index funds, ELSS\n")
	sb.WriteString("- RETIREMENT (older): Large-cap, balanced funds, debt funds\n")
	sb.WriteString("- WEALTH BUILDING: Based on risk tolerance\n\n")

	sb.WriteString("PERSONALIZATION FACTORS:\n")
	fmt.Fprintf(&sb, "- Age: %s\n", ageGuidance(age))
	fmt.Fprintf(&sb, "- Goal Timeline: %s\n", goalGuidance(p.Goal))
	fmt.Fprintf(&sb, "- Risk Mapping: %s\n\n", riskMapping(p.RiskTolerance))

	sb.WriteString("Respond in this exact JSON format:\n")
	sb.WriteString(`{
  "riskAllocation": {
    "high": <percentage_based_on_goal_first_then_risk>,
    "medium": <percentage_based_on_goal_first_then_risk>,
    "low": <percentage_based_on_goal_first_then_risk>
  },
  "investments": [
    {
      "type": "<investment_type_matching_goal>",
      "name": "<specific_fund_or_instrument>",
      "amount": <amount>,
      "percentage": <percentage>,
      "risk": "<High/Medium/Low>",
      "holdingPeriod": "<duration_matching_goal>",
      "reason": "<explanation_why_this_fits_GOAL_and_risk_profile>"
    }
  ]
}` + "\n\n")

	sb.WriteString("REMEMBER: The same person with different goals should get COMPLETELY different plans. Goal drives strategy first, risk tolerance adjusts within that framework!\n")

	return sb.String()
}

func riskGuidance(riskTolerance string) string {
	risk := strings.ToLower(riskTolerance)
	switch {
	case strings.Contains(risk, "aggressive") || strings.Contains(risk, "high"):
		return `RISK PROFILE: AGGRESSIVE INVESTOR
- This client wants HIGH RETURNS and can handle HIGH VOLATILITY
- Allocate 60-80% to high-risk investments
- Focus on growth stocks, small-cap funds, sector ETFs
- Minimize safe investments (max 20% in bonds/FDs)
`
	case strings.Contains(risk, "conservative") || strings.Contains(risk, "low"):
		return `RISK PROFILE: CONSERVATIVE INVESTOR
- This client prioritizes CAPITAL SAFETY over high returns
- Allocate 60-80% to low-risk investments
- Focus on government bonds, FDs, debt funds, blue-chip dividend stocks
- Minimize high-risk investments (max 20% in stocks)
`
	default:
		return `RISK PROFILE: MODERATE INVESTOR
- This client wants BALANCED growth with moderate risk
- Allocate 40-50% to medium-risk investments
- Focus on diversified mutual funds, index funds, large-cap stocks
- Balance between safety and growth
`
	}
}

func ageGuidance(age string) string {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return "Consider age-appropriate risk allocation"
	}
	switch {
	case n < 30:
		return "Young investor - can take more risks for long-term growth"
	case n < 50:
		return "Mid-career - balance growth and stability"
	default:
		return "Approaching retirement - focus on capital preservation"
	}
}

func goalGuidance(goal string) string {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "retirement"):
		return "Long-term goal - can handle market volatility for better returns"
	case strings.Contains(g, "house") || strings.Contains(g, "home"):
		return "Medium-term goal - balanced approach with some safety"
	case strings.Contains(g, "emergency"):
		return "Safety-first approach - prioritize liquidity and capital preservation"
	case strings.Contains(g, "wealth") || strings.Contains(g, "growth"):
		return "Growth-focused - can take higher risks for wealth building"
	default:
		return "Align investment risk with goal timeline"
	}
}

func riskMapping(riskTolerance string) string {
	risk := strings.ToLower(riskTolerance)
	switch {
	case strings.Contains(risk, "very concerned"):
		return "Conservative investor - prioritize capital safety"
	case strings.Contains(risk, "somewhat worried"):
		return "Moderate-conservative investor - limited risk acceptable"
	case strings.Contains(risk, "not too bothered"):
		return "Moderate investor - balanced approach to risk/reward"
	case strings.Contains(risk, "completely fine"):
		return "Moderate-aggressive investor - comfortable with volatility for growth"
	case strings.Contains(risk, "aggressive"):
		return "Aggressive investor - maximum growth focus"
	default:
		return "Moderate investor - balanced risk approach"
	}
}
