package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finpilot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc, keys ...string) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGemini(GeminiConfig{
		BaseURL:  srv.URL,
		APIKeys:  keys,
		Model:    "gemini-1.5-flash",
		Timeout:  2 * time.Second,
		Cooldown: time.Minute,
	}, slog.New(slog.DiscardHandler), metrics.New("test", prometheus.NewRegistry()))
}

func candidateBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
}

func TestGeminiGenerateText(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "what amount")
		fmt.Fprint(w, candidateBody("What monthly amount can you invest?"))
	}, "key-1")

	text, err := g.GenerateText(context.Background(), "ask what amount the user can invest")
	require.NoError(t, err)
	assert.Equal(t, "What monthly amount can you invest?", text)
}

func TestGeminiRotatesKeysOnQuota(t *testing.T) {
	var calls int
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("key") == "exhausted" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, candidateBody("ok"))
	}, "exhausted", "fresh")

	text, err := g.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)

	// The exhausted key is on cooldown now, so only the fresh key is hit.
	_, err = g.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGeminiAllKeysFail(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "bad-1", "bad-2")

	_, err := g.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, errUnauthorised)
}

func TestGeminiEmptyCandidates(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}, "key-1")

	_, err := g.GenerateText(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no candidate text")
}
