package plan

import (
	"fmt"
	"strings"
	"time"
)

// FallbackPlan synthesizes a deterministic, rule-based plan used
// whenever the AI-derived plan is unavailable or invalid. Archetype
// selection keys off the risk tolerance; timeline and expected return
// key off the goal.
func FallbackPlan(monthly int, riskTolerance, goal string) Plan {
	risk := strings.ToLower(riskTolerance)
	goalLower := strings.ToLower(goal)
	aggressive := strings.Contains(risk, "aggressive") || strings.Contains(risk, "high")
	conservative := strings.Contains(risk, "conservative") || strings.Contains(risk, "low")

	var options []Option
	var breakdown RiskBreakdown

	switch {
	case aggressive:
		options = []Option{
			{
				Type:          "Growth Stocks",
				Name:          "High Growth Equity Fund",
				Amount:        int(float64(monthly) * 0.70),
				Percentage:    70,
				Reason:        "High-growth potential for aggressive investors seeking maximum returns",
				HoldingPeriod: "5+ years",
				Risk:          "High",
				Color:         colorCharcoal,
			},
			{
				Type:          "Equity Index Funds",
				Name:          "S&P 500 Index Fund",
				Amount:        int(float64(monthly) * 0.30),
				Percentage:    30,
				Reason:        "Diversified market exposure for long-term growth",
				HoldingPeriod: "3-5 years",
				Risk:          "Medium",
				Color:         colorPrimary,
			},
		}
		breakdown = RiskBreakdown{High: 70, Medium: 30, Low: 0}
	case conservative:
		options = []Option{
			{
				Type:          "Fixed Deposits",
				Name:          "High-Yield Savings",
				Amount:        int(float64(monthly) * 0.60),
				Percentage:    60,
				Reason:        "Capital preservation with guaranteed returns",
				HoldingPeriod: "1-2 years",
				Risk:          "Low",
				Color:         colorSuccess,
			},
			{
				Type:          "Government Bonds",
				Name:          "Treasury Bonds",
				Amount:        int(float64(monthly) * 0.40),
				Percentage:    40,
				Reason:        "Government-backed secure investment",
				HoldingPeriod: "3-5 years",
				Risk:          "Low",
				Color:         colorNyanza,
			},
		}
		breakdown = RiskBreakdown{High: 0, Medium: 20, Low: 80}
	default:
		options = []Option{
			{
				Type:          "Balanced Mutual Funds",
				Name:          "Diversified Portfolio Fund",
				Amount:        int(float64(monthly) * 0.50),
				Percentage:    50,
				Reason:        "Balanced growth with moderate risk",
				HoldingPeriod: "3-5 years",
				Risk:          "Medium",
				Color:         colorPrimary,
			},
			{
				Type:          "Index Funds",
				Name:          "Market Index Fund",
				Amount:        int(float64(monthly) * 0.30),
				Percentage:    30,
				Reason:        "Broad market exposure for steady growth",
				HoldingPeriod: "3-5 years",
				Risk:          "Medium",
				Color:         colorSecondary,
			},
			{
				Type:          "Fixed Deposits",
				Name:          "Stable Income Fund",
				Amount:        int(float64(monthly) * 0.20),
				Percentage:    20,
				Reason:        "Stable returns for risk management",
				HoldingPeriod: "1-2 years",
				Risk:          "Low",
				Color:         colorSuccess,
			},
		}
		breakdown = RiskBreakdown{High: 20, Medium: 50, Low: 30}
	}

	var timeline, expectedReturn string
	switch {
	case strings.Contains(goalLower, "emergency"):
		timeline = "1-2 years"
		expectedReturn = "4-6%"
	case strings.Contains(goalLower, "retirement"):
		timeline = "10+ years"
		if strings.Contains(risk, "high") {
			expectedReturn = "8-12%"
		} else {
			expectedReturn = "6-10%"
		}
	case strings.Contains(goalLower, "house"):
		timeline = "3-7 years"
		expectedReturn = "6-9%"
	default:
		timeline = "3-5 years"
		expectedReturn = "7-11%"
	}

	recommendations := []string{
		"Review and rebalance portfolio every 6 months",
		"Consider increasing investment amount by 10% annually",
		"Monitor performance and adjust strategy as needed",
	}
	switch {
	case strings.Contains(goalLower, "emergency"):
		recommendations = append(recommendations, "Maintain easy access to funds for emergencies")
	case strings.Contains(goalLower, "retirement"):
		recommendations = append(recommendations, "Start retirement planning early for compound growth")
	case strings.Contains(goalLower, "house"):
		recommendations = append(recommendations, "Consider separate savings for down payment")
	}

	return Plan{
		TotalAmount:       monthly,
		MonthlyInvestment: monthly,
		Options:           options,
		RiskBreakdown:     breakdown,
		Timeline:          timeline,
		ExpectedReturn:    expectedReturn,
		Recommendations:   recommendations,
		PlanID:            fmt.Sprintf("fallback_plan_%d", time.Now().Unix()),
		CreatedAt:         time.Now().Format(time.RFC3339),
	}
}
