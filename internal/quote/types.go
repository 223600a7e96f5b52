package quote

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
)

// Direction selects which side of the swap is fixed.
type Direction string

const (
	// FixedSource fixes the amount spent; the destination amount floats.
	FixedSource Direction = "ExactIn"
	// FixedDestination fixes the amount received; the source amount floats.
	FixedDestination Direction = "ExactOut"
)

// Request describes a prospective swap to be priced.
type Request struct {
	SourceAsset   asset.Reference
	DestAsset     asset.Reference
	Amount        decimal.Decimal // source amount for FixedSource, dest amount for FixedDestination
	Direction     Direction
	SlippageBps   uint16
	SourceAccount string
}

// Quote is an indicative, time-bounded exchange offer. It is consumed exactly
// once by the swap builder and discarded on expiry or input change.
type Quote struct {
	Direction   Direction       `json:"direction"`
	SourceAsset asset.Reference `json:"source_asset"`
	DestAsset   asset.Reference `json:"dest_asset"`

	// Amounts are arbitrary precision; wire form is always a decimal string.
	SourceAmount decimal.Decimal `json:"source_amount"`
	DestAmount   decimal.Decimal `json:"dest_amount"`
	ImpliedPrice decimal.Decimal `json:"implied_price"` // dest/source at quote time

	SlippageBps        uint16          `json:"slippage_bps"`
	DestMinSuggested   decimal.Decimal `json:"dest_min_suggested"`
	SourceMaxSuggested decimal.Decimal `json:"source_max_suggested"`

	// Route is venue-specific and passed through unmodified.
	Route json.RawMessage `json:"route,omitempty"`

	NetworkFee      decimal.Decimal `json:"network_fee"`
	NetworkFeeAsset string          `json:"network_fee_asset,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the quote is no longer valid for execution.
func (q *Quote) Expired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// Age returns how long ago the quote was issued.
func (q *Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.CreatedAt)
}
