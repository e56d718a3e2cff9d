// Package postgres provides pgx-backed persistence for the progress service.
// Every statement runs inside a transaction that pins app.tenant_id so the
// row-level security policies can enforce tenant isolation.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides Postgres-backed persistence for weight entries, progress
// photos, challenge assignments, and their outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// withTenantTx runs fn inside a transaction with app.tenant_id pinned for RLS.
func (r *Repository) withTenantTx(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(tenantID, clientID string) string
}

func clientPartitionKey(tenantID, clientID string) string {
	return fmt.Sprintf("%s:%s", tenantID, clientID)
}

var eventCatalog = map[string]EventMetadata{
	"weight.recorded": {
		Topic:          "progress_events",
		SchemaSubject:  "progress_events-value",
		PartitionKeyFn: clientPartitionKey,
	},
	"photo.uploaded": {
		Topic:          "progress_events",
		SchemaSubject:  "progress_events-value",
		PartitionKeyFn: clientPartitionKey,
	},
	"photo.deleted": {
		Topic:          "progress_events",
		SchemaSubject:  "progress_events-value",
		PartitionKeyFn: clientPartitionKey,
	},
}

// insertOutbox records an event row in the same transaction as the state
// change it describes. dedupeKey must be unique per event occurrence.
func insertOutbox(ctx context.Context, tx pgx.Tx, tenantID, clientID, aggregateType, aggregateID, eventType, dedupeKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		tenantID,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(tenantID, clientID),
		body,
		dedupeKey,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
