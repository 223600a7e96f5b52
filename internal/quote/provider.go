package quote

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoRoute is the backend's soft "found: false" signal: no viable route
	// exists for the pair. It is a normal result variant, not a transport
	// failure, so callers branch on it with errors.Is.
	ErrNoRoute = errors.New("no route found")

	// ErrInvalidAmount is returned before any network call.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSameAsset rejects swaps where source and destination are identical.
	ErrSameAsset = errors.New("source and destination assets are the same")

	// ErrInvalidSlippage rejects slippage outside [0, 10000] basis points.
	ErrInvalidSlippage = errors.New("slippage out of range")
)

// Provider produces indicative quotes for prospective swaps. Implementations
// are read-only; a quote request never mutates chain state. The mock and HTTP
// providers are interchangeable and selected once at composition time.
type Provider interface {
	GetQuote(ctx context.Context, req Request) (*Quote, error)
}

// ValidateRequest performs the input checks every provider applies before
// touching the network.
func ValidateRequest(req Request) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}
	if req.SlippageBps > bpsDenominator {
		return fmt.Errorf("%w: %d bps", ErrInvalidSlippage, req.SlippageBps)
	}
	if req.SourceAsset.Equal(req.DestAsset) {
		return fmt.Errorf("%w: %s", ErrSameAsset, req.SourceAsset.Code)
	}
	if req.Direction != FixedSource && req.Direction != FixedDestination {
		return fmt.Errorf("invalid direction %q", req.Direction)
	}
	return nil
}

// fillSuggestedBounds derives the slippage bounds the backend did not supply.
func fillSuggestedBounds(q *Quote) {
	if q.DestMinSuggested.IsZero() && q.DestAmount.IsPositive() {
		q.DestMinSuggested = DestMin(q.DestAmount, q.SlippageBps)
	}
	if q.SourceMaxSuggested.IsZero() && q.SourceAmount.IsPositive() {
		q.SourceMaxSuggested = SourceMax(q.SourceAmount, q.SlippageBps)
	}
	if q.ImpliedPrice.IsZero() {
		q.ImpliedPrice = ImpliedPrice(q.SourceAmount, q.DestAmount)
	}
}
