package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsignedTransferEnvelope(t *testing.T, from solana.PublicKey) string {
	t.Helper()

	to, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, from, to.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(from),
	)
	require.NoError(t, err)

	env, err := tx.ToBase64()
	require.NoError(t, err)
	return env
}

func TestSignEnvelope(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	k := NewKeyring()
	require.NoError(t, k.Unlock(key.String()))
	env := unsignedTransferEnvelope(t, key.PublicKey())

	signedB64, err := k.SignEnvelope(env)
	require.NoError(t, err)
	require.NotEqual(t, env, signedB64)

	signed, err := solana.TransactionFromBase64(signedB64)
	require.NoError(t, err)
	require.NoError(t, signed.VerifySignatures())
}

func TestSignEnvelopeLocked(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	k := NewKeyring()
	_, err = k.SignEnvelope(unsignedTransferEnvelope(t, key.PublicKey()))
	assert.ErrorIs(t, err, ErrLocked)
}

func TestSignEnvelopeGarbage(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	k := NewKeyring()
	require.NoError(t, k.Unlock(key.String()))

	_, err = k.SignEnvelope("not-base64!!")
	assert.Error(t, err)
}
