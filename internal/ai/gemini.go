package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"finpilot/internal/metrics"

	"log/slog"
)

const (
	defaultGeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"
	geminiProviderName   = "gemini"
)

var (
	errQuotaExceeded = errors.New("gemini quota exceeded")
	errUnauthorised  = errors.New("gemini unauthorised")
)

// Gemini calls the Gemini generateContent API over plain HTTP. Multiple
// API keys are rotated in order; keys that hit quota or auth failures
// are put on cooldown before the next key is tried. A single pass over
// the key list is not a retry loop: once every key has failed, the
// caller falls back.
type Gemini struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	httpClient *http.Client
	baseURL    string
	keys       []string
	model      string
	timeout    time.Duration
	cooldown   time.Duration

	mu        sync.Mutex
	cooldowns map[string]time.Time
}

// GeminiConfig holds Gemini gateway configuration.
type GeminiConfig struct {
	BaseURL  string
	APIKeys  []string
	Model    string
	Timeout  time.Duration
	Cooldown time.Duration
}

type callResult struct {
	text string
	err  error
}

// NewGemini creates a Gemini gateway.
func NewGemini(cfg GeminiConfig, logger *slog.Logger, m *metrics.Metrics) *Gemini {
	base := cfg.BaseURL
	if base == "" {
		base = defaultGeminiAPIBase
	}
	return &Gemini{
		logger:     logger.With("component", "ai_gemini"),
		metrics:    m,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(base, "/"),
		keys:       cfg.APIKeys,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		cooldown:   cfg.Cooldown,
		cooldowns:  make(map[string]time.Time),
	}
}

// GenerateText sends the prompt and returns the first candidate text.
func (c *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.4,
			MaxOutputTokens: 1024,
		},
	}

	var lastErr error
	for i, key := range c.keys {
		if c.onCooldown(key) {
			continue
		}

		res := c.invokeWithKey(ctx, key, payload)
		if res.err == nil {
			c.metrics.AIRequests.WithLabelValues(geminiProviderName, "success").Inc()
			return res.text, nil
		}
		lastErr = res.err

		if errors.Is(res.err, errQuotaExceeded) || errors.Is(res.err, errUnauthorised) {
			c.setCooldown(key)
			c.logger.Warn("gemini key placed on cooldown", "key_index", i, "error", res.err)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no available gemini keys")
	}
	c.metrics.AIRequests.WithLabelValues(geminiProviderName, "failed").Inc()
	return "", lastErr
}

func (c *Gemini) invokeWithKey(ctx context.Context, key string, payload geminiRequest) callResult {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return callResult{err: fmt.Errorf("marshal payload: %w", err)}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, key)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return callResult{err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.AIRequests.WithLabelValues(geminiProviderName, "error").Inc()
		return callResult{err: fmt.Errorf("gemini http: %w", err)}
	}
	defer resp.Body.Close()

	latency := time.Since(start).Seconds()
	c.metrics.AILatency.WithLabelValues(geminiProviderName, fmt.Sprintf("%d", resp.StatusCode)).Observe(latency)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return callResult{err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusOK {
		text, err := extractCandidateText(body)
		if err != nil {
			return callResult{err: err}
		}
		return callResult{text: text}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return callResult{err: errQuotaExceeded}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return callResult{err: errUnauthorised}
	}

	return callResult{err: fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode, string(body))}
}

func (c *Gemini) onCooldown(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.cooldowns[key]
	return ok && time.Now().Before(until)
}

func (c *Gemini) setCooldown(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cooldowns[key] = time.Now().Add(c.cooldown)
}

func extractCandidateText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("no candidate text found")
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int32   `json:"maxOutputTokens,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Role  string       `json:"role"`
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
