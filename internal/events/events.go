// Package events defines the event payloads exchanged with other services.
package events

import "time"

// WeightRecorded is emitted when a daily weight entry is saved or overwritten.
type WeightRecorded struct {
	TenantID        string    `json:"tenant_id"`
	ClientID        string    `json:"client_id"`
	Date            string    `json:"date"`
	WeightKg        float64   `json:"weight_kg"`
	IsFridayWeighIn bool      `json:"is_friday_weigh_in"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// PhotoUploaded is emitted when a progress photo row is persisted.
type PhotoUploaded struct {
	PhotoID       string    `json:"photo_id"`
	TenantID      string    `json:"tenant_id"`
	ClientID      string    `json:"client_id"`
	Date          string    `json:"date"`
	Category      string    `json:"category"`
	PhysicalSlot  string    `json:"physical_slot"`
	IsFridayPhoto bool      `json:"is_friday_photo"`
	URL           string    `json:"url"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// PhotoDeleted is emitted when a photo row is removed.
type PhotoDeleted struct {
	PhotoID    string    `json:"photo_id"`
	TenantID   string    `json:"tenant_id"`
	ClientID   string    `json:"client_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ChallengeAssigned is consumed from the coaching service when a coach
// enrolls a client in the 8-week challenge.
type ChallengeAssigned struct {
	AssignmentID string `json:"assignment_id"`
	TenantID     string `json:"tenant_id"`
	ClientID     string `json:"client_id"`
	CoachID      string `json:"coach_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ChallengeDeactivated is consumed when a coach ends an assignment early.
type ChallengeDeactivated struct {
	AssignmentID string    `json:"assignment_id"`
	TenantID     string    `json:"tenant_id"`
	ClientID     string    `json:"client_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}
