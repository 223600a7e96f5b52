package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Flag is a runtime boolean switch. The orchestrator API consults
// KeySwapExecuteEnabled before any ledger-mutating endpoint.
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known flag keys.
const (
	KeySwapExecuteEnabled = "swap.execute.enabled"
	KeyQuotePollEnabled   = "swap.quote-poll.enabled"
)
