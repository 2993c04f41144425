package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type aiInvestment struct {
	Type          string   `json:"type"`
	Name          string   `json:"name"`
	Amount        *float64 `json:"amount"`
	Percentage    *float64 `json:"percentage"`
	Risk          string   `json:"risk"`
	HoldingPeriod string   `json:"holdingPeriod"`
	Reason        string   `json:"reason"`
}

type aiAllocation struct {
	High   *int `json:"high"`
	Medium *int `json:"medium"`
	Low    *int `json:"low"`
}

type aiPlanPayload struct {
	RiskAllocation  *aiAllocation  `json:"riskAllocation"`
	Investments     []aiInvestment `json:"investments"`
	Timeline        string         `json:"timeline"`
	ExpectedReturn  string         `json:"expectedReturn"`
	Recommendations []string       `json:"recommendations"`
}

// ParseResponse extracts the JSON payload from free-form model output
// and maps it into a Plan, substituting defaults for missing fields.
// Any decode failure degrades to the deterministic fallback plan; this
// boundary never returns an error.
func ParseResponse(raw string, monthly int, riskTolerance, goal string) Plan {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return FallbackPlan(monthly, riskTolerance, goal)
	}

	var payload aiPlanPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return FallbackPlan(monthly, riskTolerance, goal)
	}

	breakdown := RiskBreakdown{High: 30, Medium: 40, Low: 30}
	if payload.RiskAllocation != nil {
		if payload.RiskAllocation.High != nil {
			breakdown.High = *payload.RiskAllocation.High
		}
		if payload.RiskAllocation.Medium != nil {
			breakdown.Medium = *payload.RiskAllocation.Medium
		}
		if payload.RiskAllocation.Low != nil {
			breakdown.Low = *payload.RiskAllocation.Low
		}
	}

	options := make([]Option, 0, len(payload.Investments))
	for _, inv := range payload.Investments {
		opt := Option{
			Type:          inv.Type,
			Name:          inv.Name,
			Reason:        inv.Reason,
			HoldingPeriod: inv.HoldingPeriod,
			Risk:          inv.Risk,
		}
		if opt.Type == "" {
			opt.Type = "Mixed Investment"
		}
		if opt.Name == "" {
			opt.Name = "AI Selected Investment"
		}
		if opt.Reason == "" {
			opt.Reason = "AI-generated personalized investment recommendation"
		}
		if opt.HoldingPeriod == "" {
			opt.HoldingPeriod = "1-3 years"
		}
		if opt.Risk == "" {
			opt.Risk = "Medium"
		}
		if inv.Amount != nil {
			opt.Amount = int(*inv.Amount)
		} else {
			opt.Amount = monthly / len(payload.Investments)
		}
		if inv.Percentage != nil {
			opt.Percentage = int(*inv.Percentage)
		} else {
			opt.Percentage = 100 / len(payload.Investments)
		}
		opt.Color = riskColor(opt.Risk)
		options = append(options, opt)
	}

	timeline := payload.Timeline
	if timeline == "" {
		timeline = "3-5 years"
	}
	expectedReturn := payload.ExpectedReturn
	if expectedReturn == "" {
		expectedReturn = "8-12%"
	}
	recommendations := payload.Recommendations
	if len(recommendations) == 0 {
		recommendations = []string{
			"Review and rebalance portfolio quarterly",
			"Consider increasing investment amount annually",
			"Monitor performance and adjust strategy as needed",
		}
	}

	return Plan{
		TotalAmount:       monthly,
		MonthlyInvestment: monthly,
		Options:           options,
		RiskBreakdown:     breakdown,
		Timeline:          timeline,
		ExpectedReturn:    expectedReturn,
		Recommendations:   recommendations,
		PlanID:            fmt.Sprintf("ai_plan_%d", time.Now().Unix()),
		CreatedAt:         time.Now().Format(time.RFC3339),
	}
}
