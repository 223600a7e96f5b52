package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sovicopay/swap-orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   2, // separate DB for cache tests
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

func testEvent(sig string) *models.SwapEvent {
	return &models.SwapEvent{
		Signature:    sig,
		Timestamp:    time.Now().UTC().Truncate(time.Second),
		Account:      "TestAccount111",
		Pair:         "SOL-USDT",
		SourceAsset:  "SOL",
		DestAsset:    "USDT:Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		SourceAmount: "1",
		DestAmount:   "195.3673",
		ImpliedPrice: "195.3673",
		NetworkFee:   "0.000005",
		SigningMode:  "client_held_secret",
	}
}

func TestRedisHistory_RecentSwaps(t *testing.T) {
	h := NewRedisHistory(setupTestRedis(t), logrus.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.AddRecentSwap(ctx, testEvent(fmt.Sprintf("sig%d", i))))
	}

	items, err := h.GetRecentSwaps(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	// LPush ordering: newest first
	assert.Equal(t, "sig2", items[0].Signature)
	assert.Equal(t, "sig0", items[2].Signature)
	assert.Equal(t, "195.3673", items[0].DestAmount)
}

func TestRedisHistory_TrimsAtCap(t *testing.T) {
	h := NewRedisHistory(setupTestRedis(t), logrus.New())
	ctx := context.Background()

	for i := 0; i < maxRecentSwaps+20; i++ {
		require.NoError(t, h.AddRecentSwap(ctx, testEvent(fmt.Sprintf("sig%d", i))))
	}

	items, err := h.GetRecentSwaps(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, maxRecentSwaps)
}

func TestRedisHistory_PublishSubscribe(t *testing.T) {
	h := NewRedisHistory(setupTestRedis(t), logrus.New())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := h.SubscribeSwaps(ctx)
	require.NoError(t, err)

	require.NoError(t, h.PublishSwap(ctx, testEvent("live1")))

	select {
	case ev := <-ch:
		require.NotNil(t, ev)
		assert.Equal(t, "live1", ev.Signature)
		assert.Equal(t, "SOL-USDT", ev.Pair)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published swap")
	}

	cancel()
	// channel closes once the context is cancelled
	for range ch {
	}
}
