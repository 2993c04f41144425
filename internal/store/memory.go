package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a map-backed Store suitable for tests and single-node
// development. All methods are safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]ProfileRecord
	sessions map[string]SessionRecord
	plans    map[string]PlanRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]ProfileRecord),
		sessions: make(map[string]SessionRecord),
		plans:    make(map[string]PlanRecord),
	}
}

// SaveProfile stores a profile, generating an ID when absent.
func (m *Memory) SaveProfile(ctx context.Context, rec ProfileRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID("profile")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.profiles[rec.ID] = rec
	return rec.ID, nil
}

// GetProfile returns the profile or ErrNotFound.
func (m *Memory) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (m *Memory) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]ProfileRecord, 0, len(m.profiles))
	for _, rec := range m.profiles {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// SaveSession stores a conversation snapshot.
func (m *Memory) SaveSession(ctx context.Context, rec SessionRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID("session")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.sessions[rec.ID] = rec
	return rec.ID, nil
}

// ListSessions returns all session snapshots ordered by creation time.
func (m *Memory) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]SessionRecord, 0, len(m.sessions))
	for _, rec := range m.sessions {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// SavePlan stores a plan, generating an ID when absent.
func (m *Memory) SavePlan(ctx context.Context, rec PlanRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID("plan")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.plans[rec.ID] = rec
	return rec.ID, nil
}

// GetPlan returns the plan or ErrNotFound.
func (m *Memory) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ListPlans returns all plans ordered by creation time.
func (m *Memory) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]PlanRecord, 0, len(m.plans))
	for _, rec := range m.plans {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}
