//go:build integration_test || all_tests

package kv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/2beens/weeklyfit/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPostgresSetup(t *testing.T) (*PostgresStore, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "weeklyfit",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	store := NewPostgresStore(dbPool)
	require.NoError(t, store.EnsureSchema(timeoutCtx))
	_, err = dbPool.Exec(timeoutCtx, `DELETE FROM kv_store`)
	require.NoError(t, err)

	return store, func() {
		dbPool.Close()
	}
}

func TestPostgresStore_BasicCRUD(t *testing.T) {
	store, shutdown := testPostgresSetup(t)
	defer shutdown()
	ctx := context.Background()

	_, err := store.Get(ctx, "weeklyData")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "weeklyData", []byte(`{"meals": {"breakfast": "eggs"}}`)))
	val, err := store.Get(ctx, "weeklyData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"meals": {"breakfast": "eggs"}}`, string(val))

	require.NoError(t, store.Set(ctx, "weeklyData", []byte(`{"meals": {}}`)))
	val, err = store.Get(ctx, "weeklyData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"meals": {}}`, string(val))

	require.NoError(t, store.Delete(ctx, "weeklyData"))
	_, err = store.Get(ctx, "weeklyData")
	assert.ErrorIs(t, err, ErrNotFound)
}
