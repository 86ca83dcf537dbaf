//go:build integration_test || all_tests

package kv

import (
	"errors"
	"testing"

	pkgtesting "github.com/2beens/weeklyfit/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_integration(t *testing.T) {
	ctx, rdb := pkgtesting.GetRedisClientAndCtx(t)
	store := WithPrefix(NewRedisStore(rdb), "kv-it:")

	require.NoError(t, store.Delete(ctx, "weeklyData"))
	_, err := store.Get(ctx, "weeklyData")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Set(ctx, "weeklyData", []byte(`{"meals":{}}`)))
	got, err := store.Get(ctx, "weeklyData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"meals":{}}`, string(got))

	raw, err := rdb.Get(ctx, "kv-it:weeklyData").Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"meals":{}}`, raw)

	require.NoError(t, store.Delete(ctx, "weeklyData"))
}
