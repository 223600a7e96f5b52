package quote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MockProvider serves deterministic quotes from a fixed rate table. It backs
// the demo composition and tests; pairs missing from the table behave exactly
// like the backend's "found: false".
type MockProvider struct {
	rates map[string]map[string]decimal.Decimal // source code -> dest code -> price
	ttl   time.Duration
	fee   decimal.Decimal
	now   func() time.Time
}

// DefaultRates mirrors the demo catalog's indicative prices.
func DefaultRates() map[string]map[string]decimal.Decimal {
	d := decimal.RequireFromString
	return map[string]map[string]decimal.Decimal{
		"SOL": {
			"USDT": d("195.3673"),
			"USDC": d("195.41"),
			"BONK": d("9150000"),
		},
		"USDT": {
			"SOL":  d("0.005118"),
			"USDC": d("0.9998"),
		},
		"USDC": {
			"SOL":  d("0.005117"),
			"USDT": d("1.0002"),
		},
	}
}

func NewMockProvider(rates map[string]map[string]decimal.Decimal, ttl time.Duration) *MockProvider {
	if rates == nil {
		rates = DefaultRates()
	}
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &MockProvider{
		rates: rates,
		ttl:   ttl,
		fee:   decimal.RequireFromString("0.000005"),
		now:   time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (p *MockProvider) WithClock(now func() time.Time) *MockProvider {
	p.now = now
	return p
}

func (p *MockProvider) GetQuote(ctx context.Context, req Request) (*Quote, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	price, ok := p.rates[req.SourceAsset.Code][req.DestAsset.Code]
	if !ok || !price.IsPositive() {
		return nil, ErrNoRoute
	}

	var sourceAmount, destAmount decimal.Decimal
	if req.Direction == FixedSource {
		sourceAmount = req.Amount
		destAmount = req.Amount.Mul(price).Round(6)
	} else {
		destAmount = req.Amount
		sourceAmount = req.Amount.DivRound(price, 9)
	}

	route, _ := json.Marshal([]string{req.SourceAsset.Code, req.DestAsset.Code})

	now := p.now()
	q := &Quote{
		Direction:       req.Direction,
		SourceAsset:     req.SourceAsset,
		DestAsset:       req.DestAsset,
		SourceAmount:    sourceAmount,
		DestAmount:      destAmount,
		SlippageBps:     req.SlippageBps,
		Route:           route,
		NetworkFee:      p.fee,
		NetworkFeeAsset: req.SourceAsset.Code,
		CreatedAt:       now,
		ExpiresAt:       now.Add(p.ttl),
	}
	fillSuggestedBounds(q)
	return q, nil
}
