package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/balance"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
)

// HTTPExecutor drives the wallet backend's /swap/begin, /swap/complete and
// /swap/execute endpoints.
type HTTPExecutor struct {
	client *transport.Client
}

func NewHTTPExecutor(client *transport.Client) *HTTPExecutor {
	return &HTTPExecutor{client: client}
}

type beginRequestBody struct {
	PublicKey    string          `json:"public_key"`
	SourceToken  string          `json:"source_token"`
	DestToken    string          `json:"dest_token"`
	SourceAmount string          `json:"source_amount"`
	DestMin      string          `json:"dest_min"`
	Route        json.RawMessage `json:"route,omitempty"`
}

type beginResponseBody struct {
	UnsignedTransaction string `json:"unsigned_transaction"`
	NetworkFeeAmount    string `json:"network_fee_amount"`
	NetworkFeeAsset     string `json:"network_fee_asset"`
}

type completeRequestBody struct {
	PublicKey         string `json:"public_key,omitempty"`
	SignedTransaction string `json:"signed_transaction"`
}

type executeRequestBody struct {
	Secret       string          `json:"secret"`
	Destination  string          `json:"destination,omitempty"`
	SourceToken  string          `json:"source_token"`
	DestToken    string          `json:"dest_token"`
	SourceAmount string          `json:"source_amount"`
	DestMin      string          `json:"dest_min"`
	Route        json.RawMessage `json:"route,omitempty"`
}

type executionResponseBody struct {
	Signature    string        `json:"signature"`
	SourceSpent  string        `json:"source_spent,omitempty"`
	DestReceived string        `json:"dest_received,omitempty"`
	Balances     []wireBalance `json:"balances,omitempty"`
	ExplorerLink string        `json:"explorer_link,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
}

type wireBalance struct {
	Code         string `json:"code"`
	IssuerOrMint string `json:"issuer_or_mint,omitempty"`
	Decimals     uint8  `json:"decimals,omitempty"`
	Amount       string `json:"amount"`
}

func (e *HTTPExecutor) BeginSwap(ctx context.Context, q *quote.Quote, sourcePublicKey string) (*UnsignedEnvelope, error) {
	body := beginRequestBody{
		PublicKey:    sourcePublicKey,
		SourceToken:  quote.WireToken(q.SourceAsset),
		DestToken:    quote.WireToken(q.DestAsset),
		SourceAmount: q.SourceAmount.String(),
		DestMin:      q.DestMinSuggested.String(),
		Route:        q.Route,
	}

	var resp beginResponseBody
	if err := e.client.PostJSON(ctx, "/swap/begin", body, &resp); err != nil {
		return nil, mapBackendError(err)
	}
	if resp.UnsignedTransaction == "" {
		return nil, fmt.Errorf("backend returned no transaction envelope")
	}

	env := &UnsignedEnvelope{
		EnvelopeB64:     resp.UnsignedTransaction,
		NetworkFeeAsset: resp.NetworkFeeAsset,
	}
	if resp.NetworkFeeAmount != "" {
		fee, err := decimal.NewFromString(resp.NetworkFeeAmount)
		if err != nil {
			return nil, fmt.Errorf("malformed network fee %q: %w", resp.NetworkFeeAmount, err)
		}
		env.NetworkFee = fee
	}
	return env, nil
}

func (e *HTTPExecutor) CompleteSwap(ctx context.Context, signedEnvelopeB64, sourcePublicKey string) (*ExecutionResult, error) {
	body := completeRequestBody{
		PublicKey:         sourcePublicKey,
		SignedTransaction: signedEnvelopeB64,
	}

	var resp executionResponseBody
	if err := e.client.PostJSON(ctx, "/swap/complete", body, &resp); err != nil {
		return nil, mapBackendError(err)
	}
	return parseExecutionResult(&resp)
}

func (e *HTTPExecutor) ExecuteSwap(ctx context.Context, q *quote.Quote, secret solana.PrivateKey, destination string) (*ExecutionResult, error) {
	if secret == nil {
		return nil, fmt.Errorf("no secret supplied")
	}

	body := executeRequestBody{
		Secret:       secret.String(),
		Destination:  destination,
		SourceToken:  quote.WireToken(q.SourceAsset),
		DestToken:    quote.WireToken(q.DestAsset),
		SourceAmount: q.SourceAmount.String(),
		DestMin:      q.DestMinSuggested.String(),
		Route:        q.Route,
	}

	var resp executionResponseBody
	if err := e.client.PostJSON(ctx, "/swap/execute", body, &resp); err != nil {
		return nil, mapBackendError(err)
	}
	return parseExecutionResult(&resp)
}

func parseExecutionResult(resp *executionResponseBody) (*ExecutionResult, error) {
	if resp.Signature == "" {
		return nil, fmt.Errorf("backend returned no signature")
	}

	res := &ExecutionResult{
		Signature:    resp.Signature,
		ExplorerLink: resp.ExplorerLink,
	}

	var err error
	if resp.SourceSpent != "" {
		if res.SourceSpent, err = decimal.NewFromString(resp.SourceSpent); err != nil {
			return nil, fmt.Errorf("malformed source_spent %q: %w", resp.SourceSpent, err)
		}
	}
	if resp.DestReceived != "" {
		if res.DestReceived, err = decimal.NewFromString(resp.DestReceived); err != nil {
			return nil, fmt.Errorf("malformed dest_received %q: %w", resp.DestReceived, err)
		}
	}
	for _, b := range resp.Balances {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("malformed balance amount %q: %w", b.Amount, err)
		}
		res.BalancesAfter = append(res.BalancesAfter, balance.Entry{
			Asset:  asset.Reference{Code: b.Code, IssuerOrMint: b.IssuerOrMint, Decimals: b.Decimals},
			Amount: amount,
		})
	}
	return res, nil
}

// mapBackendError lifts well-known backend rejection codes into the error
// taxonomy; everything else stays a transport error.
func mapBackendError(err error) error {
	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}

	var body struct {
		ErrorCode string `json:"error_code"`
	}
	if jsonErr := json.Unmarshal(httpErr.Body, &body); jsonErr != nil {
		return err
	}

	switch body.ErrorCode {
	case "slippage_exceeded":
		return fmt.Errorf("%w: %s", ErrSlippageExceeded, httpErr)
	case "insufficient_balance":
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, httpErr)
	default:
		return err
	}
}
