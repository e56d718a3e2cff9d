//go:build integration

package postgres

import (
    "context"
    "os"
    "path/filepath"
    "runtime"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/stretchr/testify/require"
    postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

    "example.com/progress/internal/domain"
)

func TestRepositoryRespectsTenantIsolation(t *testing.T) {
	ctx := context.Background()

	repo, _ := setupRepository(t, ctx)

	tenantID := uuid.NewString()
	clientID := uuid.NewString()
	day := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)

	entry := domain.WeightEntry{
		TenantID:        tenantID,
		ClientID:        clientID,
		Date:            day,
		WeightKg:        82.4,
		IsFridayWeighIn: true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertEntry(ctx, entry))

	stored, err := repo.GetEntry(ctx, tenantID, clientID, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, 82.4, stored.WeightKg)

	otherTenant := uuid.NewString()
	storedOther, err := repo.GetEntry(ctx, otherTenant, clientID, day)
	require.NoError(t, err)
	require.Nil(t, storedOther, "RLS should prevent cross-tenant access")
}

func TestUpsertEntryOverwritesSameDay(t *testing.T) {
	ctx := context.Background()

	repo, _ := setupRepository(t, ctx)

	tenantID := uuid.NewString()
	clientID := uuid.NewString()
	day := time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC)

	first := domain.WeightEntry{
		TenantID: tenantID, ClientID: clientID, Date: day,
		WeightKg: 84.0, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertEntry(ctx, first))

	second := first
	second.WeightKg = 83.1
	second.UpdatedAt = time.Now().UTC().Add(time.Second)
	require.NoError(t, repo.UpsertEntry(ctx, second))

	history, err := repo.ListEntriesSince(ctx, tenantID, clientID, day.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 83.1, history[0].WeightKg)
}

func TestCreatePhotoEnforcesSlotUniqueness(t *testing.T) {
	ctx := context.Background()

	repo, _ := setupRepository(t, ctx)

	tenantID := uuid.NewString()
	clientID := uuid.NewString()
	day := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)

	photo := domain.ProgressPhoto{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		ClientID:      clientID,
		Date:          day,
		PhysicalSlot:  domain.SlotFront,
		Category:      domain.CategoryProgress,
		IsFridayPhoto: true,
		ObjectKey:     "progress/test/front.jpg",
		URL:           "http://minio/progress/test/front.jpg",
		ContentType:   "image/jpeg",
		SizeBytes:     1024,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, photo))

	dup := photo
	dup.ID = uuid.NewString()
	dup.ObjectKey = "progress/test/front-2.jpg"
	err := repo.Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestOutboxRowWrittenWithMutation(t *testing.T) {
	ctx := context.Background()

	repo, pool := setupRepository(t, ctx)

	tenantID := uuid.NewString()
	clientID := uuid.NewString()

	entry := domain.WeightEntry{
		TenantID: tenantID, ClientID: clientID,
		Date:     time.Date(2025, time.October, 28, 0, 0, 0, 0, time.UTC),
		WeightKg: 80.0, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertEntry(ctx, entry))

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE tenant_id=$1 AND event_type='weight.recorded' AND published_at IS NULL`,
		tenantID,
	).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestActiveAssignmentLifecycle(t *testing.T) {
	ctx := context.Background()

	repo, _ := setupRepository(t, ctx)

	tenantID := uuid.NewString()
	clientID := uuid.NewString()

	assignment := domain.ChallengeAssignment{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ClientID:  clientID,
		CoachID:   uuid.NewString(),
		StartDate: time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, assignment))

	active, err := repo.ActiveAssignment(ctx, tenantID, clientID)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, assignment.ID, active.ID)

	require.NoError(t, repo.Deactivate(ctx, tenantID, assignment.ID, time.Now().UTC()))

	active, err = repo.ActiveAssignment(ctx, tenantID, clientID)
	require.NoError(t, err)
	require.Nil(t, active)
}

func setupRepository(t *testing.T, ctx context.Context) (*Repository, *pgxpool.Pool) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("coaching"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return NewRepository(pool), pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
		"../../../db/postgres/migrations/0002_outbox_dlq_retry.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
    t.Helper()
    _, file, _, ok := runtime.Caller(0)
    require.True(t, ok)
    return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
    deadline := time.Now().Add(30 * time.Second)
    for {
        pool, err := pgxpool.New(ctx, connStr)
        if err == nil {
            err = pool.Ping(ctx)
            pool.Close()
            if err == nil {
                return nil
            }
        }
        if time.Now().After(deadline) {
            return err
        }
        time.Sleep(time.Second)
    }
}
