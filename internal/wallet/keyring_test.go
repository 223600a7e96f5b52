package wallet

import (
	"strconv"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyring_LockedByDefault(t *testing.T) {
	k := NewKeyring()
	assert.False(t, k.Unlocked())

	_, err := k.Secret()
	assert.ErrorIs(t, err, ErrLocked)

	_, err = k.PublicKey()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestKeyring_UnlockBase58(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	k := NewKeyring()
	require.NoError(t, k.Unlock(priv.String()))
	assert.True(t, k.Unlocked())

	got, err := k.Secret()
	require.NoError(t, err)
	assert.Equal(t, priv, got)

	pub, err := k.PublicKey()
	require.NoError(t, err)
	assert.True(t, pub.Equals(priv.PublicKey()))
}

func TestKeyring_UnlockJSONArray(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	parts := make([]string, len(priv))
	for i, b := range priv {
		parts[i] = strconv.Itoa(int(b))
	}
	j := "[" + strings.Join(parts, ",") + "]"

	k := NewKeyring()
	require.NoError(t, k.Unlock(j))

	got, err := k.Secret()
	require.NoError(t, err)
	assert.Equal(t, priv, got)
}

func TestKeyring_UnlockRejectsGarbage(t *testing.T) {
	k := NewKeyring()
	assert.Error(t, k.Unlock(""))
	assert.Error(t, k.Unlock("not-a-key"))
	assert.Error(t, k.Unlock("[1,2,3]"))
	assert.False(t, k.Unlocked())
}

func TestKeyring_MnemonicDeterministic(t *testing.T) {
	const phrase = "legal winner thank year wave sausage worth useful legal winner thank yellow"

	a := NewKeyring()
	b := NewKeyring()
	require.NoError(t, a.UnlockWithMnemonic(phrase, ""))
	require.NoError(t, b.UnlockWithMnemonic(phrase, ""))

	pubA, err := a.PublicKey()
	require.NoError(t, err)
	pubB, err := b.PublicKey()
	require.NoError(t, err)
	assert.True(t, pubA.Equals(pubB), "same mnemonic must derive the same key")

	// passphrase changes the derived key
	c := NewKeyring()
	require.NoError(t, c.UnlockWithMnemonic(phrase, "trezor"))
	pubC, err := c.PublicKey()
	require.NoError(t, err)
	assert.False(t, pubA.Equals(pubC))
}

func TestKeyring_MnemonicEmptyFailsClosed(t *testing.T) {
	k := NewKeyring()
	err := k.UnlockWithMnemonic("  ", "")
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, k.Unlocked())
}

func TestKeyring_LockClearsSecret(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	k := NewKeyring()
	require.NoError(t, k.Unlock(priv.String()))
	k.Lock()

	assert.False(t, k.Unlocked())
	_, err = k.Secret()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession("DemoPubKey111", "tok-abc")
	assert.Equal(t, "DemoPubKey111", s.Account())
	assert.Equal(t, "tok-abc", s.Token())

	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	require.NoError(t, s.Keyring().Unlock(priv.String()))

	s.Teardown()
	assert.Empty(t, s.Account())
	assert.Empty(t, s.Token())
	assert.False(t, s.Keyring().Unlocked())
}

func TestSession_AnonymousTokenAllowed(t *testing.T) {
	s := NewSession("DemoPubKey111", "")
	assert.Empty(t, s.Token())
}
