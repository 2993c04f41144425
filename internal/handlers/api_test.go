package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"finpilot/internal/advisor"
	"finpilot/internal/metrics"
	"finpilot/internal/plan"
	"finpilot/internal/store"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	response string
	err      error
}

func (m *mockGateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.response, m.err
}

func newTestAPI(t *testing.T, gw *mockGateway) (*API, *store.Memory) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)
	mem := store.NewMemory()
	api := NewAPI(
		advisor.New(gw, logger, m),
		plan.NewGenerator(gw, logger, m),
		mem,
		NewRateLimiter(nil, 0, 0, logger),
		reg,
		[]string{"*"},
		m,
		logger,
	)
	return api, mem
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNextQuestionEndpointWelcome(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	rec := postJSON(t, h, "/api/next-question", map[string]any{
		"chatHistory": []any{},
		"answers":     map[string]any{},
		"requestId":   "req-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res nextQuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Message, "what specific amount can you invest monthly")
	assert.False(t, res.IsComplete)
	assert.NotNil(t, res.Options)
}

func TestNextQuestionEndpointExtracts(t *testing.T) {
	api, mem := newTestAPI(t, &mockGateway{response: "What's your risk tolerance?"})
	h := api.Routes()

	rec := postJSON(t, h, "/api/next-question", map[string]any{
		"chatHistory": []map[string]string{
			{"role": "ai", "message": "welcome"},
			{"role": "user", "message": "I can do $1500 per month"},
		},
		"answers":   map[string]any{},
		"requestId": "req-2",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res nextQuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "$1500 per month", res.UpdatedAnswers.MonthlyInvestment)

	sessions, err := mem.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "req-2", sessions[0].RequestID)
}

func TestSaveProfileAndList(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	rec := postJSON(t, h, "/api/save-profile", saveProfileRequest{
		MonthlyInvestment:    "$1000 per month",
		InvestmentPreference: "moderate investments",
		RiskTolerance:        "medium risk",
		FinancialGoal:        "retirement planning",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res saveProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "Investment profile created successfully! Welcome to FinPilot!", res.Message)
	assert.Contains(t, res.ProfileID, "profile_")

	listReq := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	listRec := httptest.NewRecorder()
	h.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), res.ProfileID)
}

func TestSaveProfileRejectsIncomplete(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	rec := postJSON(t, h, "/api/save-profile", saveProfileRequest{
		MonthlyInvestment: "$1000 per month",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlanUnknownProfile(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	rec := postJSON(t, h, "/api/generate-plan", generatePlanRequest{ProfileID: "profile_missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile not found")
}

func TestGeneratePlanFallsBackAndPersists(t *testing.T) {
	api, mem := newTestAPI(t, &mockGateway{response: "not json at all"})
	h := api.Routes()

	saveRec := postJSON(t, h, "/api/save-profile", saveProfileRequest{
		MonthlyInvestment:    "$2000 per month",
		InvestmentPreference: "aggressive investments",
		RiskTolerance:        "high risk",
		FinancialGoal:        "retirement planning",
	})
	require.Equal(t, http.StatusOK, saveRec.Code)
	var saved saveProfileResponse
	require.NoError(t, json.Unmarshal(saveRec.Body.Bytes(), &saved))

	rec := postJSON(t, h, "/api/generate-plan", generatePlanRequest{ProfileID: saved.ProfileID})
	require.Equal(t, http.StatusOK, rec.Code)

	var res generatePlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "Investment plan generated successfully!", res.Message)
	assert.Contains(t, res.Plan.PlanID, "fallback_plan_")

	stored, err := mem.GetPlan(context.Background(), res.Plan.PlanID)
	require.NoError(t, err)
	assert.Equal(t, saved.ProfileID, stored.ProfileID)
}

func TestGeneratePlanFeedbackMessage(t *testing.T) {
	api, mem := newTestAPI(t, &mockGateway{err: assert.AnError})
	h := api.Routes()

	id, err := mem.SaveProfile(context.Background(), store.ProfileRecord{})
	require.NoError(t, err)

	rec := postJSON(t, h, "/api/generate-plan", generatePlanRequest{ProfileID: id, Feedback: "more bonds please"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Investment plan updated based on your feedback!")
}

func TestGetPlanByID(t *testing.T) {
	api, mem := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	stored := plan.FallbackPlan(1000, "low risk", "house down payment")
	_, err := mem.SavePlan(context.Background(), store.PlanRecord{ID: stored.PlanID, ProfileID: "profile_1", Plan: stored})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/plan/"+stored.PlanID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), stored.PlanID)

	missing := httptest.NewRequest(http.MethodGet, "/api/plan/plan_missing", nil)
	missingRec := httptest.NewRecorder()
	h.ServeHTTP(missingRec, missing)
	assert.Equal(t, http.StatusNotFound, missingRec.Code)
}

func TestSavePlanEndpoint(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	stored := plan.FallbackPlan(500, "medium risk", "education planning")
	rec := postJSON(t, h, "/api/save-plan", savePlanRequest{ProfileID: "profile_9", Plan: stored})

	require.Equal(t, http.StatusOK, rec.Code)
	var res savePlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, stored.PlanID, res.PlanID)
}

func TestListPlans(t *testing.T) {
	api, mem := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	stored := plan.FallbackPlan(750, "high risk", "retirement planning")
	_, err := mem.SavePlan(context.Background(), store.PlanRecord{ID: stored.PlanID, ProfileID: "profile_7", Plan: stored})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), stored.PlanID)
	assert.Contains(t, rec.Body.String(), "profile_7")
}

func TestListPlansEmpty(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plans":[]}`, rec.Body.String())
}

func TestHealthAndRoot(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	h.ServeHTTP(healthRec, health)
	require.Equal(t, http.StatusOK, healthRec.Code)
	assert.Contains(t, healthRec.Body.String(), "healthy")

	root := httptest.NewRequest(http.MethodGet, "/", nil)
	rootRec := httptest.NewRecorder()
	h.ServeHTTP(rootRec, root)
	require.Equal(t, http.StatusOK, rootRec.Code)
	assert.Contains(t, rootRec.Body.String(), "FinPilot API is running")
}

func TestCORSPreflight(t *testing.T) {
	api, _ := newTestAPI(t, &mockGateway{})
	h := api.Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/next-question", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightRejectsUnknownOrigin(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)
	gw := &mockGateway{}
	api := NewAPI(
		advisor.New(gw, logger, m),
		plan.NewGenerator(gw, logger, m),
		store.NewMemory(),
		NewRateLimiter(nil, 0, 0, logger),
		reg,
		[]string{"https://app.example.com"},
		m,
		logger,
	)
	h := api.Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/next-question", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	allowed := httptest.NewRequest(http.MethodOptions, "/api/next-question", nil)
	allowed.Header.Set("Origin", "https://app.example.com")
	allowedRec := httptest.NewRecorder()
	h.ServeHTTP(allowedRec, allowed)

	assert.Equal(t, http.StatusNoContent, allowedRec.Code)
	assert.Equal(t, "https://app.example.com", allowedRec.Header().Get("Access-Control-Allow-Origin"))
}
