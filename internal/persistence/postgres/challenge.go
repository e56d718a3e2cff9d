package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/progress/internal/domain"
)

const assignmentColumns = `assignment_id, tenant_id, client_id, coach_id, start_date, end_date, is_active, created_at, updated_at`

// ActiveAssignment returns the client's active assignment, or nil. With
// overlapping assignments the most recently created one wins.
func (r *Repository) ActiveAssignment(ctx context.Context, tenantID, clientID string) (*domain.ChallengeAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM challenge_assignments
        WHERE tenant_id=$1 AND client_id=$2 AND is_active
        ORDER BY created_at DESC
        LIMIT 1`

	var assignment *domain.ChallengeAssignment
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, tenantID, clientID)
		var a domain.ChallengeAssignment
		if err := row.Scan(&a.ID, &a.TenantID, &a.ClientID, &a.CoachID, &a.StartDate, &a.EndDate, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		assignment = &a
		return nil
	})
	return assignment, err
}

// Upsert writes the assignment keyed by its ID. Redelivered assignment
// events overwrite rather than duplicate.
func (r *Repository) Upsert(ctx context.Context, assignment domain.ChallengeAssignment) error {
	const stmt = `INSERT INTO challenge_assignments (assignment_id, tenant_id, client_id, coach_id, start_date, end_date, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (assignment_id)
        DO UPDATE SET coach_id = EXCLUDED.coach_id,
                      start_date = EXCLUDED.start_date,
                      end_date = EXCLUDED.end_date,
                      is_active = EXCLUDED.is_active,
                      updated_at = EXCLUDED.updated_at`

	return r.withTenantTx(ctx, assignment.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt,
			assignment.ID,
			assignment.TenantID,
			assignment.ClientID,
			assignment.CoachID,
			assignment.StartDate,
			assignment.EndDate,
			assignment.IsActive,
			assignment.CreatedAt,
			assignment.UpdatedAt,
		)
		return err
	})
}

// Deactivate marks the assignment inactive. Unknown assignment IDs are a
// no-op so event redelivery stays idempotent.
func (r *Repository) Deactivate(ctx context.Context, tenantID, assignmentID string, occurredAt time.Time) error {
	const stmt = `UPDATE challenge_assignments SET is_active = FALSE, updated_at = $3
        WHERE tenant_id=$1 AND assignment_id=$2`

	return r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt, tenantID, assignmentID, occurredAt)
		return err
	})
}
