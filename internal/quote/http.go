package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
)

// DefaultQuoteTTL is applied when the backend omits expires_at. It matches the
// refresh poll interval so a quote is always re-fetched before going stale.
const DefaultQuoteTTL = 10 * time.Second

// HTTPProvider requests quotes from the wallet backend's POST /swap/quote.
type HTTPProvider struct {
	client *transport.Client
	ttl    time.Duration
}

func NewHTTPProvider(client *transport.Client, ttl time.Duration) *HTTPProvider {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &HTTPProvider{client: client, ttl: ttl}
}

type quoteRequestBody struct {
	Mode          string `json:"mode"`
	SourceToken   string `json:"source_token"`
	DestToken     string `json:"dest_token"`
	SourceAmount  string `json:"source_amount,omitempty"`
	DestAmount    string `json:"dest_amount,omitempty"`
	SourceAccount string `json:"source_account,omitempty"`
	SlippageBps   uint16 `json:"slippage_bps"`
}

type quoteResponseBody struct {
	Found             bool            `json:"found"`
	SourceAmount      string          `json:"source_amount"`
	DestinationAmount string          `json:"destination_amount"`
	ImpliedPrice      string          `json:"implied_price"`
	DestMinSuggest    string          `json:"dest_min_suggest"`
	RouteTokens       json.RawMessage `json:"route_tokens,omitempty"`
	NetworkFeeAmount  string          `json:"network_fee_amount"`
	NetworkFeeAsset   string          `json:"network_fee_asset"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
}

// WireToken returns the identifier shape the backend expects for ref: the
// issuer/mint when present, otherwise the bare code for the native asset.
func WireToken(ref asset.Reference) string {
	if ref.IssuerOrMint != "" {
		return ref.IssuerOrMint
	}
	return ref.Code
}

func (p *HTTPProvider) GetQuote(ctx context.Context, req Request) (*Quote, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	body := quoteRequestBody{
		Mode:          string(req.Direction),
		SourceToken:   WireToken(req.SourceAsset),
		DestToken:     WireToken(req.DestAsset),
		SourceAccount: req.SourceAccount,
		SlippageBps:   req.SlippageBps,
	}
	if req.Direction == FixedSource {
		body.SourceAmount = req.Amount.String()
	} else {
		body.DestAmount = req.Amount.String()
	}

	var resp quoteResponseBody
	if err := p.client.PostJSON(ctx, "/swap/quote", body, &resp); err != nil {
		return nil, fmt.Errorf("quote service unavailable: %w", err)
	}
	if !resp.Found {
		return nil, ErrNoRoute
	}

	now := time.Now()
	q := &Quote{
		Direction:       req.Direction,
		SourceAsset:     req.SourceAsset,
		DestAsset:       req.DestAsset,
		SlippageBps:     req.SlippageBps,
		Route:           resp.RouteTokens,
		NetworkFeeAsset: resp.NetworkFeeAsset,
		CreatedAt:       now,
		ExpiresAt:       now.Add(p.ttl),
	}
	if resp.ExpiresAt != nil && resp.ExpiresAt.After(now) {
		q.ExpiresAt = *resp.ExpiresAt
	}

	var err error
	if q.SourceAmount, err = parseDecimal(resp.SourceAmount, "source_amount"); err != nil {
		return nil, err
	}
	if q.DestAmount, err = parseDecimal(resp.DestinationAmount, "destination_amount"); err != nil {
		return nil, err
	}
	if resp.ImpliedPrice != "" {
		if q.ImpliedPrice, err = parseDecimal(resp.ImpliedPrice, "implied_price"); err != nil {
			return nil, err
		}
	}
	if resp.DestMinSuggest != "" {
		if q.DestMinSuggested, err = parseDecimal(resp.DestMinSuggest, "dest_min_suggest"); err != nil {
			return nil, err
		}
	}
	if resp.NetworkFeeAmount != "" {
		if q.NetworkFee, err = parseDecimal(resp.NetworkFeeAmount, "network_fee_amount"); err != nil {
			return nil, err
		}
	}

	fillSuggestedBounds(q)
	return q, nil
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed %s %q: %w", field, s, err)
	}
	return d, nil
}
