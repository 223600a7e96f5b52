package balance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
)

// Fetcher retrieves authoritative balances for an account.
type Fetcher interface {
	FetchBalances(ctx context.Context, account string) ([]Entry, error)
}

// HTTPFetcher reads GET /wallet/balances from the wallet backend.
type HTTPFetcher struct {
	client *transport.Client
}

func NewHTTPFetcher(client *transport.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

type wireBalance struct {
	Code         string `json:"code"`
	IssuerOrMint string `json:"issuer_or_mint,omitempty"`
	Decimals     uint8  `json:"decimals,omitempty"`
	Amount       string `json:"amount"`
}

func (f *HTTPFetcher) FetchBalances(ctx context.Context, account string) ([]Entry, error) {
	var resp struct {
		Balances []wireBalance `json:"balances"`
	}
	path := "/wallet/balances?public_key=" + url.QueryEscape(account)
	if err := f.client.GetJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("balance fetch failed: %w", err)
	}

	entries := make([]Entry, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("malformed balance amount %q for %s: %w", b.Amount, b.Code, err)
		}
		entries = append(entries, Entry{
			Asset:  asset.Reference{Code: b.Code, IssuerOrMint: b.IssuerOrMint, Decimals: b.Decimals},
			Amount: amount,
		})
	}
	return entries, nil
}

// Reconciler ties a snapshot to its authoritative source.
type Reconciler struct {
	snapshot *Snapshot
	fetcher  Fetcher
	logger   *logrus.Logger
}

func NewReconciler(snapshot *Snapshot, fetcher Fetcher, logger *logrus.Logger) *Reconciler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Reconciler{snapshot: snapshot, fetcher: fetcher, logger: logger}
}

func (r *Reconciler) Snapshot() *Snapshot {
	return r.snapshot
}

// Resync fully replaces the snapshot from the backend. On failure the last
// known snapshot is retained and a warning is surfaced; balances are never
// zeroed by a failed resync.
func (r *Reconciler) Resync(ctx context.Context, account string) error {
	entries, err := r.fetcher.FetchBalances(ctx, account)
	if err != nil {
		r.logger.WithError(err).WithField("account", account).
			Warn("balance resync failed, keeping last known snapshot")
		return err
	}
	r.snapshot.Replace(entries)
	return nil
}
