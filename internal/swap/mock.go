package swap

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
)

// MockExecutor is the deterministic fixture counterpart of HTTPExecutor. It
// keeps no real ledger: begin hands out an opaque envelope, complete resolves
// it, execute settles at the quoted amount scaled by a configurable realized
// ratio, so slippage failures can be provoked in tests and demos.
type MockExecutor struct {
	mu       sync.Mutex
	pending  map[string]*quote.Quote // envelope -> quote awaiting completion
	seq      int
	realized decimal.Decimal // realized/quoted destination ratio, default 1
}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		pending:  make(map[string]*quote.Quote),
		realized: decimal.NewFromInt(1),
	}
}

// WithRealizedRatio scales the settled destination amount relative to the
// quote. A ratio below 1-slippage provokes ErrSlippageExceeded.
func (e *MockExecutor) WithRealizedRatio(ratio decimal.Decimal) *MockExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.realized = ratio
	return e
}

func (e *MockExecutor) BeginSwap(ctx context.Context, q *quote.Quote, sourcePublicKey string) (*UnsignedEnvelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.seq++
	envelope := base64.StdEncoding.EncodeToString(
		[]byte(fmt.Sprintf("mock-envelope-%d:%s:%s->%s", e.seq, sourcePublicKey, q.SourceAsset.Code, q.DestAsset.Code)))
	e.pending[envelope] = q
	e.mu.Unlock()

	return &UnsignedEnvelope{
		EnvelopeB64:     envelope,
		NetworkFee:      q.NetworkFee,
		NetworkFeeAsset: q.NetworkFeeAsset,
	}, nil
}

// CompleteSwap accepts the envelope returned by BeginSwap; mock signing is
// identity, so the signed and unsigned envelopes coincide.
func (e *MockExecutor) CompleteSwap(ctx context.Context, signedEnvelopeB64, sourcePublicKey string) (*ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	q, ok := e.pending[signedEnvelopeB64]
	if ok {
		delete(e.pending, signedEnvelopeB64)
	}
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown envelope")
	}

	return e.settle(q)
}

func (e *MockExecutor) ExecuteSwap(ctx context.Context, q *quote.Quote, secret solana.PrivateKey, destination string) (*ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("no secret supplied")
	}
	return e.settle(q)
}

func (e *MockExecutor) settle(q *quote.Quote) (*ExecutionResult, error) {
	e.mu.Lock()
	e.seq++
	sig := fmt.Sprintf("MOCKSIG%06d", e.seq)
	ratio := e.realized
	e.mu.Unlock()

	received := q.DestAmount.Mul(ratio)
	if received.LessThan(q.DestMinSuggested) {
		return nil, fmt.Errorf("%w: realized %s below minimum %s",
			ErrSlippageExceeded, received, q.DestMinSuggested)
	}

	return &ExecutionResult{
		Signature:    sig,
		SourceSpent:  q.SourceAmount,
		DestReceived: received,
		ExplorerLink: "https://explorer.invalid/tx/" + sig,
	}, nil
}
