package swap

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/balance"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
)

// SigningMode selects how an accepted quote gets signed.
type SigningMode string

const (
	// ClientHeldSecret signs with an in-memory secret, or delegates signing
	// and submission to the backend in a single call.
	ClientHeldSecret SigningMode = "client_held_secret"
	// ExternalSigner returns an unsigned payload for out-of-process signing.
	ExternalSigner SigningMode = "external_signer"
)

// UnsignedEnvelope is the payload returned by BeginSwap: a transaction the
// caller signs out of process, plus the fee estimate. Producing one causes no
// chain state change.
type UnsignedEnvelope struct {
	EnvelopeB64     string          `json:"unsigned_transaction"`
	NetworkFee      decimal.Decimal `json:"network_fee"`
	NetworkFeeAsset string          `json:"network_fee_asset,omitempty"`
}

// ExecutionResult is the outcome of a ledger mutation.
type ExecutionResult struct {
	Signature     string          `json:"signature"`
	SourceSpent   decimal.Decimal `json:"source_spent"`
	DestReceived  decimal.Decimal `json:"dest_received"`
	BalancesAfter []balance.Entry `json:"balances_after,omitempty"` // authoritative when the backend supplies them
	ExplorerLink  string          `json:"explorer_link,omitempty"`
}

// Executor performs the two supported signing flows against a swap backend.
// BeginSwap is idempotent and side-effect-free; only CompleteSwap and
// ExecuteSwap mutate the ledger, and neither is ever retried automatically.
type Executor interface {
	// BeginSwap requests an unsigned transaction envelope for the quote
	// (ExternalSigner mode, step one).
	BeginSwap(ctx context.Context, q *quote.Quote, sourcePublicKey string) (*UnsignedEnvelope, error)

	// CompleteSwap submits an externally-signed envelope to the ledger
	// (ExternalSigner mode, step two).
	CompleteSwap(ctx context.Context, signedEnvelopeB64, sourcePublicKey string) (*ExecutionResult, error)

	// ExecuteSwap signs with the supplied secret and submits in one shot
	// (ClientHeldSecret mode).
	ExecuteSwap(ctx context.Context, q *quote.Quote, secret solana.PrivateKey, destination string) (*ExecutionResult, error)
}
