package wallet

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/pbkdf2"
)

// ErrLocked is returned when a signing secret is requested and none is held.
// Callers must fail closed and hand off to the unlock flow; they must never
// reach the network executor in this state.
var ErrLocked = errors.New("wallet locked")

// Keyring holds the active signing secret in memory only. The secret is never
// persisted; Lock zeroes the key material.
type Keyring struct {
	mu   sync.Mutex
	priv solana.PrivateKey
}

func NewKeyring() *Keyring {
	return &Keyring{}
}

// Unlock installs a secret key given either a base58-encoded 64-byte key or a
// solana-keygen style JSON byte array.
func (k *Keyring) Unlock(secret string) error {
	priv, err := ParseSecret(secret)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.zeroLocked()
	k.priv = priv
	return nil
}

// UnlockWithMnemonic derives the signing key from a mnemonic phrase held only
// for the duration of this call. Derivation is the BIP39 seed function
// (PBKDF2-SHA512, 2048 rounds) with the first 32 bytes as the ed25519 seed.
func (k *Keyring) UnlockWithMnemonic(mnemonic, passphrase string) error {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return fmt.Errorf("%w: no mnemonic available", ErrLocked)
	}

	seed := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+passphrase), 2048, 64, sha512.New)
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	for i := range seed {
		seed[i] = 0
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.zeroLocked()
	k.priv = solana.PrivateKey(priv)
	return nil
}

// Lock clears the held secret. Safe to call when already locked.
func (k *Keyring) Lock() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.zeroLocked()
}

func (k *Keyring) zeroLocked() {
	for i := range k.priv {
		k.priv[i] = 0
	}
	k.priv = nil
}

// Unlocked reports whether a secret is currently held.
func (k *Keyring) Unlocked() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.priv != nil
}

// Secret returns the held signing key, or ErrLocked.
func (k *Keyring) Secret() (solana.PrivateKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.priv == nil {
		return nil, ErrLocked
	}
	out := make(solana.PrivateKey, len(k.priv))
	copy(out, k.priv)
	return out, nil
}

// PublicKey returns the public half of the held key, or ErrLocked.
func (k *Keyring) PublicKey() (solana.PublicKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.priv == nil {
		return solana.PublicKey{}, ErrLocked
	}
	return k.priv.PublicKey(), nil
}

// ParseSecret accepts a base58-encoded 64-byte key or a solana-keygen JSON
// array and returns the private key.
func ParseSecret(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrLocked)
	}

	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("invalid JSON secret key: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("invalid byte at %d: %d", i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
		}
		return solana.PrivateKey(b), nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 secret key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(raw), nil
}
