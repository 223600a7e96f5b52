package balance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
)

var (
	sol  = asset.Native("SOL")
	usdt = asset.Reference{Code: "USDT", IssuerOrMint: "GAXXUSDTK4"}
)

func seeded() *Snapshot {
	s := NewSnapshot()
	s.Replace([]Entry{
		{Asset: sol, Amount: decimal.RequireFromString("5")},
		{Asset: usdt, Amount: decimal.RequireFromString("100")},
	})
	return s
}

func TestSnapshot_ApplyOptimistic(t *testing.T) {
	s := seeded()

	// swap 1 SOL for 195.3673 USDT, applied before any resync
	s.ApplyOptimistic(sol, decimal.RequireFromString("-1"))
	s.ApplyOptimistic(usdt, decimal.RequireFromString("195.3673"))

	assert.True(t, s.Get(sol).Equal(decimal.RequireFromString("4")))
	assert.True(t, s.Get(usdt).Equal(decimal.RequireFromString("295.3673")))
}

func TestSnapshot_OptimisticCreatesEntry(t *testing.T) {
	s := NewSnapshot()
	bonk := asset.Reference{Code: "BONK", IssuerOrMint: "DezX"}
	s.ApplyOptimistic(bonk, decimal.RequireFromString("42"))
	assert.True(t, s.Get(bonk).Equal(decimal.RequireFromString("42")))
}

func TestSnapshot_SameCodeDifferentIssuer(t *testing.T) {
	s := NewSnapshot()
	a := asset.Reference{Code: "USDT", IssuerOrMint: "issuerA"}
	b := asset.Reference{Code: "USDT", IssuerOrMint: "issuerB"}
	s.ApplyOptimistic(a, decimal.RequireFromString("10"))

	assert.True(t, s.Get(b).IsZero(), "distinct issuers must not share a balance")
}

func TestSnapshot_ReplaceDiscardsOptimistic(t *testing.T) {
	s := seeded()
	s.ApplyOptimistic(sol, decimal.RequireFromString("-1"))

	// authoritative resync wins over optimistic state
	s.Replace([]Entry{{Asset: sol, Amount: decimal.RequireFromString("4.000000001")}})

	assert.True(t, s.Get(sol).Equal(decimal.RequireFromString("4.000000001")))
	assert.True(t, s.Get(usdt).IsZero(), "replace is full, not a merge")
}

type stubFetcher struct {
	entries []Entry
	err     error
}

func (f stubFetcher) FetchBalances(ctx context.Context, account string) ([]Entry, error) {
	return f.entries, f.err
}

func TestReconciler_ResyncFailureKeepsSnapshot(t *testing.T) {
	s := seeded()
	r := NewReconciler(s, stubFetcher{err: errors.New("connection refused")}, nil)

	err := r.Resync(context.Background(), "DemoPubKey111")
	require.Error(t, err)
	assert.True(t, s.Get(sol).Equal(decimal.RequireFromString("5")),
		"failed resync must never clear balances")
}

func TestReconciler_ResyncReplaces(t *testing.T) {
	s := seeded()
	r := NewReconciler(s, stubFetcher{entries: []Entry{
		{Asset: sol, Amount: decimal.RequireFromString("7")},
	}}, nil)

	require.NoError(t, r.Resync(context.Background(), "DemoPubKey111"))
	assert.True(t, s.Get(sol).Equal(decimal.RequireFromString("7")))
	assert.True(t, s.Get(usdt).IsZero())
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/balances", r.URL.Path)
		assert.Equal(t, "DemoPubKey111", r.URL.Query().Get("public_key"))
		w.Write([]byte(`{"balances":[
			{"code":"SOL","amount":"5.25"},
			{"code":"USDT","issuer_or_mint":"GAXXUSDTK4","decimals":6,"amount":"100"}
		]}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(transport.NewClient(transport.ClientConfig{
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
	}))

	entries, err := f.FetchBalances(context.Background(), "DemoPubKey111")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Asset.IsNative())
	assert.Equal(t, "GAXXUSDTK4", entries[1].Asset.IssuerOrMint)
	assert.True(t, entries[1].Amount.Equal(decimal.RequireFromString("100")))
}
