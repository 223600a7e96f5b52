package balance

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
)

// Entry is the held amount of one asset.
type Entry struct {
	Asset  asset.Reference `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// Snapshot is the per-session view of wallet balances, keyed by asset
// identity. It is mutated only by a full authoritative Replace or by an
// optimistic adjustment right after a successful execution; optimistic state
// is overwritten by the next resync and never outlives the session.
type Snapshot struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewSnapshot() *Snapshot {
	return &Snapshot{entries: make(map[string]Entry)}
}

// Get returns the held amount for ref; zero when the asset is not held.
func (s *Snapshot) Get(ref asset.Reference) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[ref.Key()]; ok {
		return e.Amount
	}
	return decimal.Zero
}

// Assets returns the known asset references, usable as a resolver catalog.
func (s *Snapshot) Assets() []asset.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]asset.Reference, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Asset)
	}
	return out
}

// Entries returns a copy of all balances.
func (s *Snapshot) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// ApplyOptimistic adjusts ref's balance by delta (negative to spend). The UI
// reflects a swap immediately; the next Replace reconciles.
func (s *Snapshot) ApplyOptimistic(ref asset.Reference, delta decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[ref.Key()]
	if !ok {
		e = Entry{Asset: ref}
	}
	e.Amount = e.Amount.Add(delta)
	s.entries[ref.Key()] = e
}

// Replace swaps in an authoritative balance set, discarding every optimistic
// adjustment. It is the only path treated as ground truth.
func (s *Snapshot) Replace(entries []Entry) {
	fresh := make(map[string]Entry, len(entries))
	for _, e := range entries {
		fresh[e.Asset.Key()] = e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = fresh
}

// Clear empties the snapshot. Called at lock/logout, never on a failed resync.
func (s *Snapshot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}
