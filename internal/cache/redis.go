package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sovicopay/swap-orchestrator/internal/models"
)

const (
	keyRecentSwaps  = "swaps:recent"
	channelSwapsAll = "swaps:live"
	maxRecentSwaps  = 100
)

// RedisHistory keeps the recent-swaps list and the live pub/sub channel.
type RedisHistory struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisHistory(client *redis.Client, logger *logrus.Logger) *RedisHistory {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisHistory{client: client, logger: logger}
}

func (h *RedisHistory) AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, keyRecentSwaps, data)
	pipe.LTrim(ctx, keyRecentSwaps, 0, maxRecentSwaps-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent swap: %w", err)
	}
	return nil
}

func (h *RedisHistory) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error) {
	if limit <= 0 || limit > maxRecentSwaps {
		limit = maxRecentSwaps
	}

	vals, err := h.client.LRange(ctx, keyRecentSwaps, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent swaps: %w", err)
	}

	out := make([]*models.SwapEvent, 0, len(vals))
	for _, v := range vals {
		var ev models.SwapEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			h.logger.WithError(err).Warn("skipping malformed swap event in cache")
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

func (h *RedisHistory) PublishSwap(ctx context.Context, swap *models.SwapEvent) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	// fan out to the firehose channel plus the pair-specific one
	pipe := h.client.Pipeline()
	pipe.Publish(ctx, channelSwapsAll, data)
	pipe.Publish(ctx, fmt.Sprintf("swaps:pair:%s", swap.Pair), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

// SubscribeSwaps returns a channel of live swap events. The channel closes
// when ctx is cancelled.
func (h *RedisHistory) SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error) {
	pubsub := h.client.Subscribe(ctx, channelSwapsAll)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe swaps: %w", err)
	}

	out := make(chan *models.SwapEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.SwapEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					h.logger.WithError(err).Warn("skipping malformed swap event on channel")
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (h *RedisHistory) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *RedisHistory) Close() error {
	return h.client.Close()
}
