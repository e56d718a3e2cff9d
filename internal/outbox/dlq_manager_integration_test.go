//go:build integration

package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDLQManagerRequeuesFailedEvents(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	tenantID := uuid.NewString()
	clientID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, tenantID, clientID, "weight.recorded"))

	// Initial dispatch fails and moves the message to the DLQ.
	failingProducer := &stubProducer{err: errors.New("upstream kafka unavailable")}
	registry := &stubRegistry{id: 100}
	dispatcher := NewDispatcher(pool, failingProducer, registry, 5*time.Millisecond, 10)
	require.NoError(t, dispatcher.processBatch(ctx))

	var dlqCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq`).Scan(&dlqCount))
	require.Equal(t, 1, dlqCount, "expected message routed to DLQ on failure")

	manager := NewDLQManager(pool, 5, time.Second)
	replayed, err := manager.RunOnce(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, replayed)

	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq`).Scan(&dlqCount))
	require.Equal(t, 0, dlqCount, "expected DLQ cleared after requeue")

	// The requeued event is pending in the outbox again and a healthy
	// dispatcher delivers it.
	healthyProducer := &stubProducer{}
	dispatcher = NewDispatcher(pool, healthyProducer, registry, 5*time.Millisecond, 10)
	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, healthyProducer.writes, 1)
	require.Equal(t, "progress_events", healthyProducer.writes[0].topic)
}

func TestDLQManagerQuarantinesAfterRetryLimit(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	tenantID := uuid.NewString()
	clientID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, tenantID, clientID, "photo.uploaded"))

	failingProducer := &stubProducer{err: errors.New("kafka down")}
	registry := &stubRegistry{id: 3}
	dispatcher := NewDispatcher(pool, failingProducer, registry, 5*time.Millisecond, 10)
	require.NoError(t, dispatcher.processBatch(ctx))

	_, err := pool.Exec(ctx, `UPDATE outbox_dlq SET retry_count = 5`)
	require.NoError(t, err)

	manager := NewDLQManager(pool, 5, time.Second)
	processed, err := manager.RunOnce(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, processed)

	var quarantined int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq WHERE quarantined_at IS NOT NULL`).Scan(&quarantined))
	require.Equal(t, 1, quarantined)
}

func TestBackoffDelayCapsAtOneHour(t *testing.T) {
	manager := NewDLQManager(nil, 10, time.Minute)

	require.Equal(t, time.Minute, manager.backoffDelay(1))
	require.Equal(t, 2*time.Minute, manager.backoffDelay(2))
	require.Equal(t, 8*time.Minute, manager.backoffDelay(4))
	require.Equal(t, time.Hour, manager.backoffDelay(10))
}
