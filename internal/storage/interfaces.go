package storage

import (
	"context"
	"io"

	"github.com/sovicopay/swap-orchestrator/internal/models"
)

// SwapHistory keeps the hot, session-facing view of executed swaps and fans
// them out to subscribers. Everything here is best-effort: a history failure
// never fails the swap that produced the event.
type SwapHistory interface {
	// AddRecentSwap prepends a swap to the recent-swaps list
	AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error

	// GetRecentSwaps retrieves the most recent swaps, newest first
	GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error)

	// PublishSwap publishes a swap event to the live channel
	PublishSwap(ctx context.Context, swap *models.SwapEvent) error

	// SubscribeSwaps subscribes to real-time swap events
	SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error)

	// Ping checks if the history backend is reachable
	Ping(ctx context.Context) error

	io.Closer
}

// SwapStore is the durable archive of executed swaps.
type SwapStore interface {
	// InsertSwap appends a swap event to the archive
	InsertSwap(ctx context.Context, swap *models.SwapEvent) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	io.Closer
}
