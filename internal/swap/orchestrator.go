package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sovicopay/swap-orchestrator/internal/balance"
	"github.com/sovicopay/swap-orchestrator/internal/models"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
	"github.com/sovicopay/swap-orchestrator/internal/storage"
	"github.com/sovicopay/swap-orchestrator/internal/wallet"
)

// State of a swap attempt. Submitting is terminal-bound: a failed submission
// requires an explicit Reset, never an automatic retry.
type State string

const (
	StateIdle       State = "idle"
	StateQuoting    State = "quoting"
	StateQuoteReady State = "quote_ready"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Config assembles an Orchestrator. Provider and Executor implementations
// (mock or HTTP) are chosen here, once, at composition time.
type Config struct {
	Provider     quote.Provider
	Executor     Executor
	Session      *wallet.Session
	Reconciler   *balance.Reconciler
	History      storage.SwapHistory // optional
	Store        storage.SwapStore   // optional
	Logger       *logrus.Logger
	PollInterval time.Duration // quote refresh cadence, default 10s
}

// Orchestrator drives one swap workflow: quote, confirm, sign, execute,
// reconcile. All mutation happens under one mutex; concurrency here means
// interleaved quote responses, which monotonic sequence numbers keep ordered.
type Orchestrator struct {
	provider   quote.Provider
	executor   Executor
	session    *wallet.Session
	reconciler *balance.Reconciler
	history    storage.SwapHistory
	store      storage.SwapStore
	logger     *logrus.Logger
	interval   time.Duration

	seq atomic.Uint64 // latest issued quote request

	mu      sync.Mutex
	state   State
	current *quote.Quote
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("quote provider is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if cfg.Reconciler == nil {
		return nil, fmt.Errorf("reconciler is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = quote.DefaultQuoteTTL
	}

	return &Orchestrator{
		provider:   cfg.Provider,
		executor:   cfg.Executor,
		session:    cfg.Session,
		reconciler: cfg.Reconciler,
		history:    cfg.History,
		store:      cfg.Store,
		logger:     cfg.Logger,
		interval:   cfg.PollInterval,
	}, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == "" {
		return StateIdle
	}
	return o.state
}

// CurrentQuote returns the staged quote, or nil.
func (o *Orchestrator) CurrentQuote() *quote.Quote {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Snapshot exposes the session's balance view.
func (o *Orchestrator) Snapshot() *balance.Snapshot {
	return o.reconciler.Snapshot()
}

// Session exposes the wallet identity this orchestrator acts for.
func (o *Orchestrator) Session() *wallet.Session {
	return o.session
}

// Resync pulls authoritative balances for the session account.
func (o *Orchestrator) Resync(ctx context.Context) error {
	return o.reconciler.Resync(ctx, o.session.Account())
}

// RequestQuote fetches a fresh quote and stages it for submission. A newer
// request supersedes any in-flight one: the response is allowed to arrive,
// but only the response matching the latest issued sequence number is
// applied; losers return ErrSuperseded and are discarded.
func (o *Orchestrator) RequestQuote(ctx context.Context, req quote.Request) (*quote.Quote, error) {
	if req.SourceAccount == "" {
		req.SourceAccount = o.session.Account()
	}

	mySeq := o.seq.Add(1)

	o.mu.Lock()
	if o.state != StateSubmitting {
		o.state = StateQuoting
	}
	o.mu.Unlock()

	q, err := o.provider.GetQuote(ctx, req)

	if o.seq.Load() != mySeq {
		// fast path: a newer request was issued while this one was in flight
		return nil, ErrSuperseded
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// re-check under the lock: a newer request may have been issued and
	// applied between the load above and acquiring the mutex, and a late
	// loser must not overwrite its quote
	if o.seq.Load() != mySeq {
		return nil, ErrSuperseded
	}
	if err != nil {
		o.current = nil
		if o.state == StateQuoting {
			o.state = StateIdle
		}
		return nil, err
	}
	o.current = q
	if o.state != StateSubmitting {
		o.state = StateQuoteReady
	}
	return q, nil
}

// InvalidateQuote discards the staged quote, e.g. when the user changes an
// input or clears the amount.
func (o *Orchestrator) InvalidateQuote() {
	o.seq.Add(1) // orphan any in-flight response
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
	if o.state == StateQuoting || o.state == StateQuoteReady {
		o.state = StateIdle
	}
}

// Reset returns a finished or failed attempt to Idle. Submission is never
// restarted implicitly.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return
	}
	o.current = nil
	o.state = StateIdle
}

// PollQuotes re-quotes req at the configured interval until ctx is cancelled,
// invoking fn with each applied result. The first quote is requested
// immediately. Superseded responses are dropped without invoking fn;
// cancellation is cooperative, the in-flight request simply gets ignored.
func (o *Orchestrator) PollQuotes(ctx context.Context, req quote.Request, fn func(*quote.Quote, error)) {
	tick := func() {
		q, err := o.RequestQuote(ctx, req)
		if errors.Is(err, ErrSuperseded) {
			return
		}
		fn(q, err)
	}

	tick()
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// stageForSubmit validates the staged quote and flips the state machine to
// Submitting under the lock.
func (o *Orchestrator) stageForSubmit(now time.Time) (*quote.Quote, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateSubmitting {
		return nil, ErrBusy
	}
	if o.current == nil {
		return nil, ErrNoQuote
	}
	if o.current.Expired(now) {
		o.current = nil
		o.state = StateIdle
		return nil, ErrQuoteExpired
	}

	q := o.current
	o.state = StateSubmitting
	return q, nil
}

func (o *Orchestrator) finish(success bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil // a quote is consumed exactly once
	if success {
		o.state = StateSucceeded
	} else {
		o.state = StateFailed
	}
}

// checkFunds is the client-side insufficient-balance pre-check against the
// last known snapshot. Backends still validate authoritatively.
func (o *Orchestrator) checkFunds(q *quote.Quote) error {
	held := o.reconciler.Snapshot().Get(q.SourceAsset)
	need := q.SourceAmount
	if q.Direction == quote.FixedDestination {
		need = q.SourceMaxSuggested
	}
	if held.LessThan(need) {
		return fmt.Errorf("%w: have %s %s, need %s", ErrInsufficientBalance,
			held, q.SourceAsset.Code, need)
	}
	return nil
}

// Begin starts the ExternalSigner flow for the staged quote: the backend
// returns an unsigned envelope and a fee estimate. Idempotent and free of
// ledger side effects, so it does not consume the quote or change state.
func (o *Orchestrator) Begin(ctx context.Context) (*UnsignedEnvelope, error) {
	o.mu.Lock()
	q := o.current
	o.mu.Unlock()
	if q == nil {
		return nil, ErrNoQuote
	}
	if q.Expired(time.Now()) {
		return nil, ErrQuoteExpired
	}
	if err := o.checkFunds(q); err != nil {
		return nil, err
	}
	return o.executor.BeginSwap(ctx, q, o.session.Account())
}

// Complete submits an externally-signed envelope, finishing the
// ExternalSigner flow. On success the snapshot is adjusted optimistically
// and the event is recorded; a failed post-trade resync only warns.
func (o *Orchestrator) Complete(ctx context.Context, signedEnvelopeB64 string) (*ExecutionResult, error) {
	q, err := o.stageForSubmit(time.Now())
	if err != nil {
		return nil, err
	}

	res, err := o.executor.CompleteSwap(ctx, signedEnvelopeB64, o.session.Account())
	if err != nil {
		o.finish(false)
		return nil, err
	}

	o.settle(ctx, q, res, ExternalSigner)
	return res, nil
}

// Execute runs the ClientHeldSecret flow for the staged quote. With no secret
// in the keyring it fails closed with wallet.ErrLocked before any network
// call; the caller routes that into the unlock flow.
func (o *Orchestrator) Execute(ctx context.Context, destination string) (*ExecutionResult, error) {
	secret, err := o.session.Keyring().Secret()
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range secret {
			secret[i] = 0
		}
	}()

	q, err := o.stageForSubmit(time.Now())
	if err != nil {
		return nil, err
	}
	if err := o.checkFunds(q); err != nil {
		o.finish(false)
		return nil, err
	}

	res, err := o.executor.ExecuteSwap(ctx, q, secret, destination)
	if err != nil {
		o.finish(false)
		return nil, err
	}

	o.settle(ctx, q, res, ClientHeldSecret)
	return res, nil
}

// settle applies the optimistic balance update, records history and attempts
// a resync. Everything after the ledger mutation is downgraded: the swap is
// not failed because bookkeeping around it struggled.
func (o *Orchestrator) settle(ctx context.Context, q *quote.Quote, res *ExecutionResult, mode SigningMode) {
	// backends may omit realized amounts; fall back to the quoted ones and
	// write them back so callers report the same numbers the snapshot saw
	if res.SourceSpent.IsZero() {
		res.SourceSpent = q.SourceAmount
	}
	if res.DestReceived.IsZero() {
		res.DestReceived = q.DestAmount
	}
	spent := res.SourceSpent
	received := res.DestReceived

	snap := o.reconciler.Snapshot()
	if len(res.BalancesAfter) > 0 {
		// the backend supplied authoritative post-trade balances
		snap.Replace(res.BalancesAfter)
	} else {
		snap.ApplyOptimistic(q.SourceAsset, spent.Neg())
		snap.ApplyOptimistic(q.DestAsset, received)
	}

	o.record(ctx, q, res, spent, received, mode)

	if len(res.BalancesAfter) == 0 {
		if err := o.reconciler.Resync(ctx, o.session.Account()); err != nil {
			o.logger.WithError(err).Warn("post-trade resync failed, optimistic balances stand")
		}
	}

	o.finish(true)
}

func (o *Orchestrator) record(ctx context.Context, q *quote.Quote, res *ExecutionResult, spent, received decimal.Decimal, mode SigningMode) {
	ev := &models.SwapEvent{
		Signature:    res.Signature,
		Timestamp:    time.Now().UTC(),
		Account:      o.session.Account(),
		Pair:         q.SourceAsset.Code + "-" + q.DestAsset.Code,
		SourceAsset:  q.SourceAsset.Key(),
		DestAsset:    q.DestAsset.Key(),
		SourceAmount: spent.String(),
		DestAmount:   received.String(),
		ImpliedPrice: q.ImpliedPrice.String(),
		NetworkFee:   q.NetworkFee.String(),
		SigningMode:  string(mode),
		ExplorerLink: res.ExplorerLink,
	}

	if o.history != nil {
		if err := o.history.AddRecentSwap(ctx, ev); err != nil {
			o.logger.WithError(err).Warn("failed to cache swap event")
		}
		if err := o.history.PublishSwap(ctx, ev); err != nil {
			o.logger.WithError(err).Warn("failed to publish swap event")
		}
	}
	if o.store != nil {
		if err := o.store.InsertSwap(ctx, ev); err != nil {
			o.logger.WithError(err).Warn("failed to archive swap event")
		}
	}
}
