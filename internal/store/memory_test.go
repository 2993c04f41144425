package store

import (
	"context"
	"testing"
	"time"

	"finpilot/internal/advisor"
	"finpilot/internal/plan"
	"finpilot/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProfileRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.SaveProfile(ctx, ProfileRecord{
		Answers: profile.Profile{MonthlyInvestment: "$1000 per month", RiskTolerance: "medium risk"},
	})
	require.NoError(t, err)
	assert.Contains(t, id, "profile_")

	rec, err := m.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "$1000 per month", rec.Answers.MonthlyInvestment)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestMemoryGetProfileNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.GetProfile(context.Background(), "profile_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListProfilesOrdered(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Now()
	_, err := m.SaveProfile(ctx, ProfileRecord{ID: "profile_b", CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)
	_, err = m.SaveProfile(ctx, ProfileRecord{ID: "profile_a", CreatedAt: base})
	require.NoError(t, err)

	recs, err := m.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "profile_a", recs[0].ID)
	assert.Equal(t, "profile_b", recs[1].ID)
}

func TestMemorySessionRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.SaveSession(ctx, SessionRecord{
		RequestID: "req-1",
		History:   []advisor.Turn{{Role: advisor.RoleUser, Message: "hello"}},
		Complete:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, id, "session_")

	recs, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-1", recs[0].RequestID)
	assert.True(t, recs[0].Complete)
}

func TestMemoryPlanRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	stored := plan.FallbackPlan(1500, "high risk", "retirement planning")
	id, err := m.SavePlan(ctx, PlanRecord{ProfileID: "profile_x", Plan: stored})
	require.NoError(t, err)

	rec, err := m.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "profile_x", rec.ProfileID)
	assert.Equal(t, stored.PlanID, rec.Plan.PlanID)

	_, err = m.GetPlan(ctx, "plan_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
