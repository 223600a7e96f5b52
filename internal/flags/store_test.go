package flags

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // separate DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		_ = client.FlushDB(cleanupCtx).Err()
		_ = client.Close()
	})

	return client
}

func TestStore_UpsertGet(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)
	ctx := context.Background()

	flag, err := store.Upsert(ctx, KeySwapExecuteEnabled, true)
	require.NoError(t, err)
	assert.Equal(t, KeySwapExecuteEnabled, flag.Key)
	assert.True(t, flag.Value)
	assert.NotZero(t, flag.UpdatedAt)

	got, err := store.Get(ctx, KeySwapExecuteEnabled)
	require.NoError(t, err)
	assert.True(t, got.Value)

	// flipping the switch updates in place
	_, err = store.Upsert(ctx, KeySwapExecuteEnabled, false)
	require.NoError(t, err)
	got, err = store.Get(ctx, KeySwapExecuteEnabled)
	require.NoError(t, err)
	assert.False(t, got.Value)
}

func TestStore_GetMissing(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "no.such.flag")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_EnabledDefaults(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)
	ctx := context.Background()

	// unset flag falls back to the caller's default
	assert.True(t, store.Enabled(ctx, KeySwapExecuteEnabled, true))
	assert.False(t, store.Enabled(ctx, KeySwapExecuteEnabled, false))

	_, err = store.Upsert(ctx, KeySwapExecuteEnabled, false)
	require.NoError(t, err)
	assert.False(t, store.Enabled(ctx, KeySwapExecuteEnabled, true))
}

func TestStore_ListDelete(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Upsert(ctx, KeySwapExecuteEnabled, true)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, KeyQuotePollEnabled, false)
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete(ctx, KeyQuotePollEnabled))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// deleting a missing flag is not an error
	assert.NoError(t, store.Delete(ctx, "no.such.flag"))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("swap.execute.enabled"))
	assert.NoError(t, ValidateKey("a"))

	for _, bad := range []string{"", " ", "has space", "has:colon", "has\ttab"} {
		assert.Error(t, ValidateKey(bad), "key %q should be invalid", bad)
	}
}
