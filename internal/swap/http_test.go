package swap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string) *transport.Client {
	t.Helper()
	return transport.NewClient(transport.ClientConfig{
		BaseURL:      baseURL,
		SessionToken: "test-token",
		Timeout:      2 * time.Second,
		MaxRetries:   1,
	})
}

func solUSDTQuote(t *testing.T) *quote.Quote {
	t.Helper()
	q, err := quote.NewMockProvider(quote.DefaultRates(), 10*time.Second).
		GetQuote(context.Background(), solUSDTRequest())
	require.NoError(t, err)
	return q
}

func TestHTTPExecutorBeginSwap(t *testing.T) {
	var got beginRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/begin", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(beginResponseBody{
			UnsignedTransaction: "dW5zaWduZWQ=",
			NetworkFeeAmount:    "0.000005",
			NetworkFeeAsset:     "SOL",
		})
	}))
	defer srv.Close()

	q := solUSDTQuote(t)
	env, err := NewHTTPExecutor(testClient(t, srv.URL)).BeginSwap(context.Background(), q, "PubKey111")
	require.NoError(t, err)

	assert.Equal(t, "dW5zaWduZWQ=", env.EnvelopeB64)
	assert.True(t, env.NetworkFee.Equal(decimal.RequireFromString("0.000005")))
	assert.Equal(t, "SOL", env.NetworkFeeAsset)

	assert.Equal(t, "PubKey111", got.PublicKey)
	assert.Equal(t, "SOL", got.SourceToken)
	assert.Equal(t, testUSDT.IssuerOrMint, got.DestToken, "issued assets go on the wire by mint")
	assert.Equal(t, q.SourceAmount.String(), got.SourceAmount)
	assert.Equal(t, q.DestMinSuggested.String(), got.DestMin)
}

func TestHTTPExecutorCompleteSwap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/complete", r.URL.Path)
		var body completeRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "c2lnbmVk", body.SignedTransaction)
		json.NewEncoder(w).Encode(executionResponseBody{
			Signature:    "5sig",
			SourceSpent:  "1",
			DestReceived: "195.2",
			Balances: []wireBalance{
				{Code: "SOL", Amount: "4"},
				{Code: "USDT", IssuerOrMint: testUSDT.IssuerOrMint, Amount: "195.2"},
			},
			ExplorerLink: "https://solscan.io/tx/5sig",
		})
	}))
	defer srv.Close()

	res, err := NewHTTPExecutor(testClient(t, srv.URL)).
		CompleteSwap(context.Background(), "c2lnbmVk", "PubKey111")
	require.NoError(t, err)

	assert.Equal(t, "5sig", res.Signature)
	assert.True(t, res.DestReceived.Equal(decimal.RequireFromString("195.2")))
	require.Len(t, res.BalancesAfter, 2)
	assert.Equal(t, "SOL", res.BalancesAfter[0].Asset.Code)
	assert.Equal(t, testUSDT.IssuerOrMint, res.BalancesAfter[1].Asset.IssuerOrMint)
}

func TestHTTPExecutorMapsBackendErrors(t *testing.T) {
	cases := []struct {
		name      string
		errorCode string
		want      error
	}{
		{"slippage", "slippage_exceeded", ErrSlippageExceeded},
		{"insufficient", "insufficient_balance", ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]string{"error_code": tc.errorCode})
			}))
			defer srv.Close()

			secret, err := solana.NewRandomPrivateKey()
			require.NoError(t, err)

			_, err = NewHTTPExecutor(testClient(t, srv.URL)).
				ExecuteSwap(context.Background(), solUSDTQuote(t), secret, "")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHTTPExecutorRejectsEmptySignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(executionResponseBody{})
	}))
	defer srv.Close()

	_, err := NewHTTPExecutor(testClient(t, srv.URL)).
		CompleteSwap(context.Background(), "c2lnbmVk", "PubKey111")
	assert.Error(t, err)
}
