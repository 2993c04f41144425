package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finpilot/internal/metrics"

	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const openaiProviderName = "openai"

// OpenAI is a chat-completion backed gateway, selectable by config as
// an alternative to Gemini.
type OpenAI struct {
	client  *openai.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	model   string
	timeout time.Duration
}

// OpenAIConfig holds OpenAI gateway configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOpenAI creates an OpenAI gateway.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger, m *metrics.Metrics) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		logger:  logger.With("component", "ai_openai"),
		metrics: m,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// GenerateText sends the prompt as a single user message.
func (c *OpenAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	c.metrics.AILatency.WithLabelValues(openaiProviderName, "request").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.AIRequests.WithLabelValues(openaiProviderName, "error").Inc()
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.metrics.AIRequests.WithLabelValues(openaiProviderName, "failed").Inc()
		return "", fmt.Errorf("openai returned empty completion")
	}

	c.metrics.AIRequests.WithLabelValues(openaiProviderName, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
