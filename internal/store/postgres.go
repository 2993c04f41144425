package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	answers JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	request_id TEXT,
	history JSONB NOT NULL,
	answers JSONB NOT NULL,
	is_complete BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL,
	plan JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Postgres is a Store backed by a PostgreSQL pool, for multi-instance
// deployments.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects to the database at url and ensures the schema.
func NewPostgres(ctx context.Context, url string, logger *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	return &Postgres{pool: pool, logger: logger.With("component", "store_postgres")}, nil
}

// SaveProfile stores a profile, generating an ID when absent.
func (p *Postgres) SaveProfile(ctx context.Context, rec ProfileRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = newID("profile")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO profiles (id, answers, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET answers = EXCLUDED.answers`,
		rec.ID, answers, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert profile: %w", err)
	}
	return rec.ID, nil
}

// GetProfile returns the profile or ErrNotFound.
func (p *Postgres) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	var rec ProfileRecord
	var answers []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, answers, created_at FROM profiles WHERE id = $1`, id).
		Scan(&rec.ID, &answers, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &rec, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (p *Postgres) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, answers, created_at FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var res []ProfileRecord
	for rows.Next() {
		var rec ProfileRecord
		var answers []byte
		if err := rows.Scan(&rec.ID, &answers, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// SaveSession stores a conversation snapshot.
func (p *Postgres) SaveSession(ctx context.Context, rec SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = newID("session")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO sessions (id, request_id, history, answers, is_complete, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET history = EXCLUDED.history,
			answers = EXCLUDED.answers, is_complete = EXCLUDED.is_complete`,
		rec.ID, rec.RequestID, history, answers, rec.Complete, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return rec.ID, nil
}

// ListSessions returns all session snapshots ordered by creation time.
func (p *Postgres) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, request_id, history, answers, is_complete, created_at FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var res []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var history, answers []byte
		if err := rows.Scan(&rec.ID, &rec.RequestID, &history, &answers, &rec.Complete, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal(history, &rec.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// SavePlan stores a plan, generating an ID when absent.
func (p *Postgres) SavePlan(ctx context.Context, rec PlanRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = newID("plan")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(rec.Plan)
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO plans (id, profile_id, plan, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET plan = EXCLUDED.plan`,
		rec.ID, rec.ProfileID, payload, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert plan: %w", err)
	}
	return rec.ID, nil
}

// GetPlan returns the plan or ErrNotFound.
func (p *Postgres) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	var rec PlanRecord
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, profile_id, plan, created_at FROM plans WHERE id = $1`, id).
		Scan(&rec.ID, &rec.ProfileID, &payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	if err := json.Unmarshal(payload, &rec.Plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &rec, nil
}

// ListPlans returns all plans ordered by creation time.
func (p *Postgres) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, profile_id, plan, created_at FROM plans ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var res []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Plan); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
