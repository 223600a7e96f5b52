package wallet

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SignEnvelope signs a base64-encoded unsigned transaction envelope with the
// keyring's secret and returns the signed envelope, base64-encoded. This is
// the in-process variant of ExternalSigner mode: begin returns the unsigned
// payload, the holder of the key signs it, complete submits it.
func (k *Keyring) SignEnvelope(envelopeB64 string) (string, error) {
	priv, err := k.Secret()
	if err != nil {
		return "", err
	}
	defer func() {
		for i := range priv {
			priv[i] = 0
		}
	}()

	tx, err := solana.TransactionFromBase64(envelopeB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction envelope: %w", err)
	}

	pub := priv.PublicKey()
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &priv
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}
