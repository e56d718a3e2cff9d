package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/progress/internal/domain"
	"example.com/progress/internal/events"
)

// AssignmentHandler ingests challenge assignment events produced by the
// coaching service. Assignments are coach-managed; this service only mirrors
// them so compliance lookups stay local.
type AssignmentHandler struct {
	repo domain.ChallengeRepository
}

// NewAssignmentHandler constructs a handler backed by the assignment repository.
func NewAssignmentHandler(repo domain.ChallengeRepository) *AssignmentHandler {
	return &AssignmentHandler{repo: repo}
}

// Handle applies one coaching event. Event types this service does not care
// about are skipped so the topic can carry the full coaching stream.
func (h *AssignmentHandler) Handle(ctx context.Context, msg Message) error {
	switch msg.EventType {
	case "challenge.assigned":
		return h.handleAssigned(ctx, msg)
	case "challenge.deactivated":
		return h.handleDeactivated(ctx, msg)
	default:
		return nil
	}
}

func (h *AssignmentHandler) handleAssigned(ctx context.Context, msg Message) error {
	var payload events.ChallengeAssigned
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("decode challenge.assigned: %w", err)
	}

	startDate, err := time.Parse("2006-01-02", payload.StartDate)
	if err != nil {
		return fmt.Errorf("parse start_date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", payload.EndDate)
	if err != nil {
		return fmt.Errorf("parse end_date: %w", err)
	}

	now := time.Now().UTC()
	return h.repo.Upsert(ctx, domain.ChallengeAssignment{
		ID:        payload.AssignmentID,
		TenantID:  payload.TenantID,
		ClientID:  payload.ClientID,
		CoachID:   payload.CoachID,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (h *AssignmentHandler) handleDeactivated(ctx context.Context, msg Message) error {
	var payload events.ChallengeDeactivated
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("decode challenge.deactivated: %w", err)
	}

	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return h.repo.Deactivate(ctx, payload.TenantID, payload.AssignmentID, occurredAt)
}
