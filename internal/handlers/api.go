// Package handlers exposes the HTTP API: conversation turns, profile
// persistence, plan generation, and operational endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"finpilot/internal/advisor"
	"finpilot/internal/metrics"
	"finpilot/internal/plan"
	"finpilot/internal/profile"
	"finpilot/internal/store"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API wires the conversation engine, plan generator, and store behind
// the HTTP surface.
type API struct {
	engine         *advisor.Engine
	planner        *plan.Generator
	store          store.Store
	limiter        *RateLimiter
	logger         *slog.Logger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	allowedOrigins []string
}

// NewAPI constructs the HTTP API.
func NewAPI(engine *advisor.Engine, planner *plan.Generator, st store.Store, limiter *RateLimiter, gatherer prometheus.Gatherer, allowedOrigins []string, m *metrics.Metrics, logger *slog.Logger) *API {
	return &API{
		engine:         engine,
		planner:        planner,
		store:          st,
		limiter:        limiter,
		logger:         logger.With("component", "api"),
		metrics:        m,
		gatherer:       gatherer,
		allowedOrigins: allowedOrigins,
	}
}

// Routes returns the full handler tree with CORS applied.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /api/next-question", a.handleNextQuestion)
	mux.HandleFunc("POST /api/save-profile", a.handleSaveProfile)
	mux.HandleFunc("GET /api/profiles", a.handleListProfiles)
	mux.HandleFunc("POST /api/generate-plan", a.handleGeneratePlan)
	mux.HandleFunc("POST /api/save-plan", a.handleSavePlan)
	mux.HandleFunc("GET /api/plans", a.handleListPlans)
	mux.HandleFunc("GET /api/plan/{id}", a.handleGetPlan)
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	return a.cors(mux)
}

type nextQuestionRequest struct {
	ChatHistory []advisor.Turn  `json:"chatHistory"`
	Answers     profile.Profile `json:"answers"`
	RequestID   string          `json:"requestId"`
}

type nextQuestionResponse struct {
	Message        string          `json:"message"`
	Options        []string        `json:"options"`
	IsComplete     bool            `json:"isComplete"`
	UpdatedAnswers profile.Profile `json:"updatedAnswers"`
}

func (a *API) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	var req nextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := a.engine.NextQuestion(r.Context(), req.ChatHistory, req.Answers)

	// Session snapshots are observability data; a store failure must
	// not break the conversation.
	if _, err := a.store.SaveSession(r.Context(), store.SessionRecord{
		RequestID: req.RequestID,
		History:   req.ChatHistory,
		Answers:   res.Answers,
		Complete:  res.Complete,
	}); err != nil {
		a.logger.Warn("failed saving session snapshot", "error", err, "request_id", req.RequestID)
	}

	a.writeJSON(w, http.StatusOK, nextQuestionResponse{
		Message:        res.Message,
		Options:        []string{},
		IsComplete:     res.Complete,
		UpdatedAnswers: res.Answers,
	})
}

type saveProfileRequest struct {
	MonthlyInvestment    string `json:"monthlyInvestment"`
	InvestmentPreference string `json:"investmentPreference"`
	RiskTolerance        string `json:"riskTolerance"`
	FinancialGoal        string `json:"financialGoal"`
	Age                  string `json:"age"`
	IncomeLevel          string `json:"incomeLevel"`
	InvestmentExperience string `json:"investmentExperience"`
	TimeHorizon          string `json:"timeHorizon"`
}

type saveProfileResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProfileID string `json:"profileId"`
}

func (a *API) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := profile.Profile{
		MonthlyInvestment: req.MonthlyInvestment,
		Preference:        req.InvestmentPreference,
		RiskTolerance:     req.RiskTolerance,
		Goal:              req.FinancialGoal,
		Age:               req.Age,
		Income:            req.IncomeLevel,
		Experience:        req.InvestmentExperience,
		TimeHorizon:       req.TimeHorizon,
	}
	if !answers.Complete() {
		a.writeError(w, http.StatusBadRequest, "profile is missing core fields")
		return
	}

	id, err := a.store.SaveProfile(r.Context(), store.ProfileRecord{Answers: answers})
	if err != nil {
		a.logger.Error("failed saving profile", "error", err)
		a.metrics.Errors.WithLabelValues("store_profile").Inc()
		a.writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	a.writeJSON(w, http.StatusOK, saveProfileResponse{
		Success:   true,
		Message:   "Investment profile created successfully! Welcome to FinPilot!",
		ProfileID: id,
	})
}

func (a *API) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	recs, err := a.store.ListProfiles(r.Context())
	if err != nil {
		a.logger.Error("failed listing profiles", "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if recs == nil {
		recs = []store.ProfileRecord{}
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"profiles": recs})
}

type generatePlanRequest struct {
	ProfileID string `json:"profileId"`
	Feedback  string `json:"feedback"`
}

type generatePlanResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Plan    plan.Plan `json:"plan"`
}

func (a *API) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		a.writeError(w, http.StatusBadRequest, "profileId is required")
		return
	}

	if !a.limiter.Allow(r.Context(), req.ProfileID) {
		a.writeError(w, http.StatusTooManyRequests, "plan generation limit reached, try again later")
		return
	}

	rec, err := a.store.GetProfile(r.Context(), req.ProfileID)
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		a.logger.Error("failed loading profile", "error", err, "profile_id", req.ProfileID)
		a.writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	generated := a.planner.Generate(r.Context(), rec.Answers, req.Feedback)

	if _, err := a.store.SavePlan(r.Context(), store.PlanRecord{
		ID:        generated.PlanID,
		ProfileID: req.ProfileID,
		Plan:      generated,
	}); err != nil {
		a.logger.Warn("failed saving generated plan", "error", err, "plan_id", generated.PlanID)
	}

	message := "Investment plan generated successfully!"
	if strings.TrimSpace(req.Feedback) != "" {
		message = "Investment plan updated based on your feedback!"
	}
	a.writeJSON(w, http.StatusOK, generatePlanResponse{Success: true, Message: message, Plan: generated})
}

type savePlanRequest struct {
	ProfileID string    `json:"profileId"`
	Plan      plan.Plan `json:"plan"`
}

type savePlanResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PlanID  string `json:"planId"`
}

func (a *API) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var req savePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Plan.PlanID == "" {
		a.writeError(w, http.StatusBadRequest, "plan.planId is required")
		return
	}

	id, err := a.store.SavePlan(r.Context(), store.PlanRecord{
		ID:        req.Plan.PlanID,
		ProfileID: req.ProfileID,
		Plan:      req.Plan,
	})
	if err != nil {
		a.logger.Error("failed saving plan", "error", err)
		a.metrics.Errors.WithLabelValues("store_plan").Inc()
		a.writeError(w, http.StatusInternalServerError, "failed to save plan")
		return
	}

	a.writeJSON(w, http.StatusOK, savePlanResponse{
		Success: true,
		Message: "Plan saved successfully!",
		PlanID:  id,
	})
}

func (a *API) handleListPlans(w http.ResponseWriter, r *http.Request) {
	recs, err := a.store.ListPlans(r.Context())
	if err != nil {
		a.logger.Error("failed listing plans", "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	if recs == nil {
		recs = []store.PlanRecord{}
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"plans": recs})
}

func (a *API) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := a.store.GetPlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		a.logger.Error("failed loading plan", "error", err, "plan_id", id)
		a.writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}
	a.writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"message": "FinPilot API is running"})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := a.matchOrigin(origin)
		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		// Preflight requests carry an Origin header; anything else is a
		// plain OPTIONS and goes to the mux.
		if r.Method == http.MethodOptions && origin != "" {
			if allowed == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) matchOrigin(origin string) string {
	for _, allowed := range a.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Warn("failed encoding response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, detail string) {
	a.writeJSON(w, status, map[string]string{"detail": detail})
}
