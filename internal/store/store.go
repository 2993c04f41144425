// Package store defines the persistence interfaces for profiles, chat
// sessions, and investment plans, with in-memory, SQLite, and Postgres
// implementations. The core never depends on a concrete backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finpilot/internal/advisor"
	"finpilot/internal/plan"
	"finpilot/internal/profile"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced record does not exist.
// This is the only error class surfaced to API callers.
var ErrNotFound = errors.New("record not found")

// ProfileRecord is a saved investment profile.
type ProfileRecord struct {
	ID        string          `json:"id"`
	Answers   profile.Profile `json:"answers"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionRecord is a snapshot of one conversation turn.
type SessionRecord struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	History   []advisor.Turn  `json:"chat_history"`
	Answers   profile.Profile `json:"current_answers"`
	Complete  bool            `json:"is_complete"`
	CreatedAt time.Time       `json:"created_at"`
}

// PlanRecord is a generated investment plan linked to its profile.
type PlanRecord struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Plan      plan.Plan `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileStore persists investment profiles keyed by ID.
type ProfileStore interface {
	SaveProfile(ctx context.Context, rec ProfileRecord) (string, error)
	GetProfile(ctx context.Context, id string) (*ProfileRecord, error)
	ListProfiles(ctx context.Context) ([]ProfileRecord, error)
}

// SessionStore persists per-turn conversation snapshots.
type SessionStore interface {
	SaveSession(ctx context.Context, rec SessionRecord) (string, error)
	ListSessions(ctx context.Context) ([]SessionRecord, error)
}

// PlanStore persists generated plans keyed by plan ID.
type PlanStore interface {
	SavePlan(ctx context.Context, rec PlanRecord) (string, error)
	GetPlan(ctx context.Context, id string) (*PlanRecord, error)
	ListPlans(ctx context.Context) ([]PlanRecord, error)
}

// Store combines the three record stores behind one handle.
type Store interface {
	ProfileStore
	SessionStore
	PlanStore
	Close()
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
