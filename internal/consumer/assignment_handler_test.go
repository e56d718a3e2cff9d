package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/progress/internal/domain"
)

type memAssignmentRepo struct {
	assignments map[string]domain.ChallengeAssignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[string]domain.ChallengeAssignment)}
}

func (r *memAssignmentRepo) ActiveAssignment(_ context.Context, tenantID, clientID string) (*domain.ChallengeAssignment, error) {
	for _, a := range r.assignments {
		if a.TenantID == tenantID && a.ClientID == clientID && a.IsActive {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memAssignmentRepo) Upsert(_ context.Context, assignment domain.ChallengeAssignment) error {
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *memAssignmentRepo) Deactivate(_ context.Context, tenantID, assignmentID string, occurredAt time.Time) error {
	if a, ok := r.assignments[assignmentID]; ok && a.TenantID == tenantID {
		a.IsActive = false
		a.UpdatedAt = occurredAt
		r.assignments[assignmentID] = a
	}
	return nil
}

func TestAssignmentHandlerUpsertsOnAssigned(t *testing.T) {
	repo := newMemAssignmentRepo()
	handler := NewAssignmentHandler(repo)

	payload, err := json.Marshal(map[string]any{
		"assignment_id": "a-1",
		"tenant_id":     "tenant-1",
		"client_id":     "client-1",
		"coach_id":      "coach-1",
		"start_date":    "2025-10-10",
		"end_date":      "2025-12-05",
	})
	require.NoError(t, err)

	err = handler.Handle(context.Background(), Message{
		EventType: "challenge.assigned",
		TenantID:  "tenant-1",
		Payload:   payload,
	})
	require.NoError(t, err)

	active, err := repo.ActiveAssignment(context.Background(), "tenant-1", "client-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "a-1", active.ID)
	require.Equal(t, time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC), active.StartDate)
}

func TestAssignmentHandlerDeactivates(t *testing.T) {
	repo := newMemAssignmentRepo()
	repo.assignments["a-2"] = domain.ChallengeAssignment{
		ID: "a-2", TenantID: "tenant-1", ClientID: "client-1", IsActive: true,
	}
	handler := NewAssignmentHandler(repo)

	payload, err := json.Marshal(map[string]any{
		"assignment_id": "a-2",
		"tenant_id":     "tenant-1",
		"client_id":     "client-1",
		"occurred_at":   time.Now().UTC(),
	})
	require.NoError(t, err)

	err = handler.Handle(context.Background(), Message{
		EventType: "challenge.deactivated",
		TenantID:  "tenant-1",
		Payload:   payload,
	})
	require.NoError(t, err)

	active, err := repo.ActiveAssignment(context.Background(), "tenant-1", "client-1")
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestAssignmentHandlerIgnoresUnrelatedEvents(t *testing.T) {
	repo := newMemAssignmentRepo()
	handler := NewAssignmentHandler(repo)

	err := handler.Handle(context.Background(), Message{
		EventType: "coaching.note_added",
		Payload:   json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	require.Empty(t, repo.assignments)
}

func TestAssignmentHandlerRejectsMalformedDates(t *testing.T) {
	repo := newMemAssignmentRepo()
	handler := NewAssignmentHandler(repo)

	err := handler.Handle(context.Background(), Message{
		EventType: "challenge.assigned",
		Payload:   json.RawMessage(`{"assignment_id":"a-3","tenant_id":"t","client_id":"c","start_date":"not-a-date","end_date":"2025-12-05"}`),
	})
	require.Error(t, err)
	require.Empty(t, repo.assignments)
}
