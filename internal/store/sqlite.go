package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	answers TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	request_id TEXT,
	history TEXT NOT NULL,
	answers TEXT NOT NULL,
	is_complete INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL,
	plan TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// SQLite is a Store backed by an embedded SQLite database, used for
// single-node deployments that need persistence without a server.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (and if needed initializes) the database at path.
func NewSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db, logger: logger.With("component", "store_sqlite")}, nil
}

// SaveProfile stores a profile, generating an ID when absent.
func (s *SQLite) SaveProfile(ctx context.Context, rec ProfileRecord) (string, error) {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (id, answers, created_at) VALUES (?, ?, ?)`,
		rec.ID, string(answers), rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert profile: %w", err)
	}
	return rec.ID, nil
}

// GetProfile returns the profile or ErrNotFound.
func (s *SQLite) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	var rec ProfileRecord
	var answers string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, answers, created_at FROM profiles WHERE id = ?`, id).
		Scan(&rec.ID, &answers, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &rec, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (s *SQLite) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, answers, created_at FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var res []ProfileRecord
	for rows.Next() {
		var rec ProfileRecord
		var answers string
		if err := rows.Scan(&rec.ID, &answers, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// SaveSession stores a conversation snapshot.
func (s *SQLite) SaveSession(ctx context.Context, rec SessionRecord) (string, error) {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, request_id, history, answers, is_complete, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, string(history), string(answers), rec.Complete, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return rec.ID, nil
}

// ListSessions returns all session snapshots ordered by creation time.
func (s *SQLite) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, history, answers, is_complete, created_at FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var res []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var history, answers string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &history, &answers, &rec.Complete, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// SavePlan stores a plan, generating an ID when absent.
func (s *SQLite) SavePlan(ctx context.Context, rec PlanRecord) (string, error) {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plans (id, profile_id, plan, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.ProfileID, string(payload), rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert plan: %w", err)
	}
	return rec.ID, nil
}

// GetPlan returns the plan or ErrNotFound.
func (s *SQLite) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	var rec PlanRecord
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, profile_id, plan, created_at FROM plans WHERE id = ?`, id).
		Scan(&rec.ID, &rec.ProfileID, &payload, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &rec, nil
}

// ListPlans returns all plans ordered by creation time.
func (s *SQLite) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, plan, created_at FROM plans ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var res []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Plan); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing sqlite store", "error", err)
	}
}
