package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/progress/internal/domain"
	"example.com/progress/internal/events"
	"example.com/progress/internal/observability"
)

const weightColumns = `tenant_id, client_id, entry_date, weight_kg, is_friday_weigh_in, created_at, updated_at`

// UpsertEntry writes the entry for (client, date), overwriting any earlier
// measurement for the same day, and records the outbox event in the same
// transaction.
func (r *Repository) UpsertEntry(ctx context.Context, entry domain.WeightEntry) error {
	const stmt = `INSERT INTO weight_entries (tenant_id, client_id, entry_date, weight_kg, is_friday_weigh_in, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (tenant_id, client_id, entry_date)
        DO UPDATE SET weight_kg = EXCLUDED.weight_kg,
                      is_friday_weigh_in = EXCLUDED.is_friday_weigh_in,
                      updated_at = EXCLUDED.updated_at`

	err := r.withTenantTx(ctx, entry.TenantID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, stmt,
			entry.TenantID,
			entry.ClientID,
			entry.Date,
			entry.WeightKg,
			entry.IsFridayWeighIn,
			entry.CreatedAt,
			entry.UpdatedAt,
		); err != nil {
			return err
		}

		day := entry.Date.Format("2006-01-02")
		aggregateID := fmt.Sprintf("%s:%s", entry.ClientID, day)
		// A same-day overwrite is a new event, so the dedupe key carries the
		// write timestamp rather than just the aggregate identity.
		dedupeKey := fmt.Sprintf("%s:weight.recorded:%d", aggregateID, entry.UpdatedAt.UnixNano())

		return insertOutbox(ctx, tx, entry.TenantID, entry.ClientID, "weight_entry", aggregateID, "weight.recorded", dedupeKey, events.WeightRecorded{
			TenantID:        entry.TenantID,
			ClientID:        entry.ClientID,
			Date:            day,
			WeightKg:        entry.WeightKg,
			IsFridayWeighIn: entry.IsFridayWeighIn,
			RecordedAt:      entry.UpdatedAt,
		})
	})
	if err != nil {
		return err
	}

	observability.RecordWeightPersisted(entry.UpdatedAt)
	return nil
}

// GetEntry retrieves the entry for one calendar day, or nil.
func (r *Repository) GetEntry(ctx context.Context, tenantID, clientID string, date time.Time) (*domain.WeightEntry, error) {
	query := `SELECT ` + weightColumns + ` FROM weight_entries WHERE tenant_id=$1 AND client_id=$2 AND entry_date=$3`

	var entry *domain.WeightEntry
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, tenantID, clientID, date)
		var e domain.WeightEntry
		if err := scanWeightEntry(row, &e); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		entry = &e
		return nil
	})
	return entry, err
}

// ListEntriesSince returns entries with entry_date >= since, newest first.
func (r *Repository) ListEntriesSince(ctx context.Context, tenantID, clientID string, since time.Time) ([]domain.WeightEntry, error) {
	query := `SELECT ` + weightColumns + ` FROM weight_entries
        WHERE tenant_id=$1 AND client_id=$2 AND entry_date >= $3
        ORDER BY entry_date DESC`

	return r.listWeightEntries(ctx, tenantID, query, tenantID, clientID, since)
}

// ListFridayEntriesBetween returns Friday weigh-ins with from <= entry_date <= to.
func (r *Repository) ListFridayEntriesBetween(ctx context.Context, tenantID, clientID string, from, to time.Time) ([]domain.WeightEntry, error) {
	query := `SELECT ` + weightColumns + ` FROM weight_entries
        WHERE tenant_id=$1 AND client_id=$2 AND is_friday_weigh_in AND entry_date BETWEEN $3 AND $4
        ORDER BY entry_date DESC`

	return r.listWeightEntries(ctx, tenantID, query, tenantID, clientID, from, to)
}

// DeleteEntry removes the entry for one calendar day. Deleting an absent
// entry is a no-op.
func (r *Repository) DeleteEntry(ctx context.Context, tenantID, clientID string, date time.Time) error {
	const stmt = `DELETE FROM weight_entries WHERE tenant_id=$1 AND client_id=$2 AND entry_date=$3`

	return r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt, tenantID, clientID, date)
		return err
	})
}

func (r *Repository) listWeightEntries(ctx context.Context, tenantID, query string, args ...interface{}) ([]domain.WeightEntry, error) {
	var entries []domain.WeightEntry
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e domain.WeightEntry
			if err := scanWeightEntry(rows, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func scanWeightEntry(row pgx.Row, e *domain.WeightEntry) error {
	return row.Scan(&e.TenantID, &e.ClientID, &e.Date, &e.WeightKg, &e.IsFridayWeighIn, &e.CreatedAt, &e.UpdatedAt)
}
