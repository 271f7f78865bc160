package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestInstanceStoreLifecycle(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping instance store integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("broker"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() {
		ClosePool(pool)
	})

	store, err := NewInstanceStore(ctx, pool, "broker")
	require.NoError(t, err)

	rec := InstanceRecord{
		Name:           "3f1d2c9a-5a70-4c5e-9a41-000000000001",
		TenantID:       "dee1ce4691e84ee6e5ea22b624c22a2e",
		TenantName:     "3f1d2c9a-5a70-4c5e-9a41-000000000001.swift.tenant@example.com",
		AccountMetaKey: "s3cr3tMetaKey",
	}

	inserted, err := store.Put(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, rec.Name, inserted.Name)
	require.False(t, inserted.CreatedAt.IsZero())

	fetched, err := store.Get(ctx, rec.Name)
	require.NoError(t, err)
	require.Equal(t, rec.TenantID, fetched.TenantID)
	require.Equal(t, rec.AccountMetaKey, fetched.AccountMetaKey)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, store.Delete(ctx, rec.Name))

	_, err = store.Get(ctx, rec.Name)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, rec.Name), ErrNotFound)
}
