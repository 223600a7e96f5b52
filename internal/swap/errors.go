package swap

import "errors"

var (
	// ErrInsufficientBalance is raised by the client-side pre-check against
	// the last known snapshot, and by backends that validate holdings. The
	// pre-check is an optimization, not a substitute for backend validation.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSlippageExceeded means the realized destination amount fell below
	// the quote's suggested minimum at execution time.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrQuoteExpired means the quote aged past its expiry; callers must
	// re-quote before submitting.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrNoQuote means no quote is staged for submission.
	ErrNoQuote = errors.New("no quote available")

	// ErrSuperseded marks a quote response that lost the race to a newer
	// request; its result was discarded, never applied.
	ErrSuperseded = errors.New("quote request superseded")

	// ErrBusy rejects a submission while another one is in flight.
	// Execution is never retried automatically: after a failure the caller
	// must Reset and start over from a fresh quote.
	ErrBusy = errors.New("submission already in flight")
)
