// finpilot is the conversational investment advisory backend. It
// collects an investment profile over chat and generates a plan via a
// configurable AI provider with a deterministic fallback.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finpilot/internal/advisor"
	"finpilot/internal/ai"
	"finpilot/internal/config"
	"finpilot/internal/handlers"
	"finpilot/internal/metrics"
	"finpilot/internal/plan"
	"finpilot/internal/profile"
	"finpilot/internal/store"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "finpilot",
		Short:         "Conversational investment advisory backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), planCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	m := metrics.New(cfg.MetricsNamespace, registry)

	st, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	gateway, err := newGateway(cfg, logger, m)
	if err != nil {
		return err
	}

	engine := advisor.New(gateway, logger, m)
	planner := plan.NewGenerator(gateway, logger, m)
	limiter := handlers.NewRateLimiter(redisClient, cfg.PlanRateLimit, cfg.PlanRateWindow, logger)
	api := handlers.NewAPI(engine, planner, st, limiter, registry, cfg.AllowedOrigins, m, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPListenAddr, "provider", cfg.AIProvider, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func planCmd() *cobra.Command {
	var amount, risk, goal string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the deterministic plan for a profile, without any AI call",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profile.Profile{MonthlyInvestment: amount, RiskTolerance: risk, Goal: goal}
			result := plan.FallbackPlan(plan.ParseAmount(p.MonthlyInvestment), p.RiskTolerance, p.Goal)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "monthly investment answer, e.g. \"$1000 per month\"")
	cmd.Flags().StringVar(&risk, "risk", "", "risk tolerance answer, e.g. \"high risk\"")
	cmd.Flags().StringVar(&goal, "goal", "", "financial goal answer, e.g. \"retirement planning\"")
	return cmd
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func newGateway(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (ai.Gateway, error) {
	switch cfg.AIProvider {
	case "gemini":
		return ai.NewGemini(ai.GeminiConfig{
			APIKeys:  cfg.GeminiAPIKeys,
			Model:    cfg.GeminiModel,
			Timeout:  cfg.GeminiTimeout,
			Cooldown: cfg.GeminiCooldown,
		}, logger, m), nil
	case "openai":
		return ai.NewOpenAI(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.OpenAITimeout,
		}, logger, m), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}
}
