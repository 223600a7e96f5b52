package wallet

import (
	"strings"
	"sync"
)

// Session is the explicit per-identity context handed to the orchestrator at
// construction. It is initialized at unlock and torn down at lock/logout;
// nothing reads wallet state ambiently.
type Session struct {
	mu      sync.RWMutex
	account string // public key of the active wallet identity
	token   string // bearer session token; empty means anonymous/demo
	keyring *Keyring
}

func NewSession(account, token string) *Session {
	return &Session{
		account: strings.TrimSpace(account),
		token:   strings.TrimSpace(token),
		keyring: NewKeyring(),
	}
}

func (s *Session) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Token returns the bearer session token, which may be empty: an anonymous
// session is tolerated, not an error.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Keyring() *Keyring {
	return s.keyring
}

// Teardown locks the keyring and clears the session identity. Called at
// lock/logout; the session must not be reused afterwards.
func (s *Session) Teardown() {
	s.keyring.Lock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = ""
	s.token = ""
}
