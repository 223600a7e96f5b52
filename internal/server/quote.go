package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/flags"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
	"github.com/sovicopay/swap-orchestrator/internal/swap"
	"github.com/sovicopay/swap-orchestrator/internal/wallet"
)

// Quote resolves the requested pair and stages a fresh quote. The staged
// quote is what a subsequent begin/execute acts on.
func (h *Handlers) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a decimal string"})
	}

	known := h.knownAssets()
	src, err := h.Resolver.ResolveWithIssuer(req.Source, req.SrcIssuer, known)
	if err != nil {
		return h.assetErr(c, "source", err)
	}
	dst, err := h.Resolver.ResolveWithIssuer(req.Dest, req.DestIssuer, known)
	if err != nil {
		return h.assetErr(c, "dest", err)
	}

	direction := quote.FixedSource
	if req.Direction != "" {
		direction = quote.Direction(req.Direction)
		if direction != quote.FixedSource && direction != quote.FixedDestination {
			return h.err(c, http.StatusBadRequest, "invalid direction", map[string]any{"direction": "ExactIn or ExactOut"})
		}
	}

	slippage := h.DefaultSlippageBps
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if h.Flags != nil && !h.Flags.Enabled(ctx, flags.KeyQuotePollEnabled, true) {
		return h.err(c, http.StatusForbidden, "quoting is disabled", nil)
	}

	q, err := h.Orc.RequestQuote(ctx, quote.Request{
		SourceAsset: src,
		DestAsset:   dst,
		Amount:      amount,
		Direction:   direction,
		SlippageBps: slippage,
	})
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrNoRoute):
			return h.err(c, http.StatusNotFound, "no route for pair", nil)
		case errors.Is(err, quote.ErrSameAsset),
			errors.Is(err, quote.ErrInvalidAmount),
			errors.Is(err, quote.ErrInvalidSlippage):
			return h.err(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, swap.ErrSuperseded):
			return h.err(c, http.StatusConflict, "superseded by a newer quote request", nil)
		default:
			h.Logger.WithError(err).Error("quote request failed")
			return h.err(c, http.StatusBadGateway, "quote backend unavailable", nil)
		}
	}
	return c.JSON(http.StatusOK, q)
}

// SwapBegin returns an unsigned envelope for the staged quote, for the
// external-signer flow. Safe to call repeatedly.
func (h *Handlers) SwapBegin(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	env, err := h.Orc.Begin(ctx)
	if err != nil {
		return h.submitErr(c, err)
	}
	return c.JSON(http.StatusOK, BeginResponse{
		UnsignedTransaction: env.EnvelopeB64,
		NetworkFee:          env.NetworkFee.String(),
		NetworkFeeAsset:     env.NetworkFeeAsset,
	})
}

// SwapComplete submits the externally-signed envelope and settles the swap
func (h *Handlers) SwapComplete(c echo.Context) error {
	var req SwapCompleteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.SignedTransaction == "" {
		return h.err(c, http.StatusBadRequest, "signed_transaction is required", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	res, err := h.Orc.Complete(ctx, req.SignedTransaction)
	if err != nil {
		return h.submitErr(c, err)
	}
	return c.JSON(http.StatusOK, h.executeResponse(res))
}

// SwapExecute runs the single-shot signing path for the staged quote. Gated
// by the swap.execute.enabled flag, and fails closed when the wallet is
// locked and no one-shot secret is supplied.
func (h *Handlers) SwapExecute(c echo.Context) error {
	var req SwapExecuteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if h.Flags != nil && !h.Flags.Enabled(ctx, flags.KeySwapExecuteEnabled, true) {
		return h.err(c, http.StatusForbidden, "swap execution is disabled", nil)
	}

	keyring := h.Orc.Session().Keyring()
	if req.Secret != "" {
		if err := keyring.Unlock(req.Secret); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid secret", nil)
		}
		defer keyring.Lock()
	}

	res, err := h.Orc.Execute(ctx, req.Destination)
	if err != nil {
		return h.submitErr(c, err)
	}
	return c.JSON(http.StatusOK, h.executeResponse(res))
}

// SwapReset returns a finished or failed attempt to idle
func (h *Handlers) SwapReset(c echo.Context) error {
	h.Orc.Reset()
	return c.JSON(http.StatusOK, map[string]any{"state": string(h.Orc.State())})
}

func (h *Handlers) executeResponse(res *swap.ExecutionResult) ExecuteResponse {
	entries := h.Orc.Snapshot().Entries()
	balances := make([]BalanceEntry, 0, len(entries))
	for _, e := range entries {
		balances = append(balances, BalanceEntry{
			Code:         e.Asset.Code,
			IssuerOrMint: e.Asset.IssuerOrMint,
			Amount:       e.Amount.String(),
		})
	}
	return ExecuteResponse{
		Signature:    res.Signature,
		SourceSpent:  res.SourceSpent.String(),
		DestReceived: res.DestReceived.String(),
		ExplorerLink: res.ExplorerLink,
		Balances:     balances,
	}
}

func (h *Handlers) assetErr(c echo.Context, field string, err error) error {
	switch {
	case errors.Is(err, asset.ErrAmbiguousAsset):
		return h.err(c, http.StatusBadRequest, field+" asset is ambiguous, pin an issuer", map[string]any{field: err.Error()})
	case errors.Is(err, asset.ErrUnknownAsset):
		return h.err(c, http.StatusBadRequest, "unknown "+field+" asset", map[string]any{field: err.Error()})
	default:
		return h.err(c, http.StatusBadRequest, "invalid "+field+" asset", nil)
	}
}

// submitErr maps submission failures onto HTTP statuses without leaking
// transport detail.
func (h *Handlers) submitErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, wallet.ErrLocked):
		return h.err(c, http.StatusConflict, "wallet is locked", nil)
	case errors.Is(err, swap.ErrNoQuote):
		return h.err(c, http.StatusConflict, "no quote staged", nil)
	case errors.Is(err, swap.ErrQuoteExpired):
		return h.err(c, http.StatusGone, "quote expired, request a new one", nil)
	case errors.Is(err, swap.ErrBusy):
		return h.err(c, http.StatusConflict, "a submission is already in flight", nil)
	case errors.Is(err, swap.ErrInsufficientBalance):
		return h.err(c, http.StatusUnprocessableEntity, "insufficient balance", nil)
	case errors.Is(err, swap.ErrSlippageExceeded):
		return h.err(c, http.StatusUnprocessableEntity, "price moved beyond the slippage limit", nil)
	default:
		h.Logger.WithError(err).Error("swap submission failed")
		return h.err(c, http.StatusBadGateway, "swap submission failed", nil)
	}
}
