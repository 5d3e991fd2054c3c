package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatAddr0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestManagerImportDerivesAddress(t *testing.T) {
	m := NewManager(NewInMemoryKeystore(), WithInMemoryStore())

	e, err := m.Import("dev", "0x"+hardhatKey0)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr0, e.Address)
	assert.Equal(t, "w3mint.dev", e.KeyRef)
	assert.NotEmpty(t, e.CreatedAt)
}

func TestManagerImportDuplicate(t *testing.T) {
	m := NewManager(NewInMemoryKeystore(), WithInMemoryStore())

	_, err := m.Import("dev", hardhatKey0)
	require.NoError(t, err)
	_, err = m.Import("dev", hardhatKey0)
	assert.ErrorIs(t, err, ErrWalletExists)
}

func TestManagerImportInvalidKey(t *testing.T) {
	m := NewManager(NewInMemoryKeystore(), WithInMemoryStore())

	_, err := m.Import("bad", "0xnothex")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestManagerOpenUnlocksWallet(t *testing.T) {
	m := NewManager(NewInMemoryKeystore(), WithInMemoryStore())
	_, err := m.Import("dev", hardhatKey0)
	require.NoError(t, err)

	w, err := m.Open("dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", w.Name)
	assert.Equal(t, hardhatAddr0, w.Address().Hex())

	_, err = m.Open("nobody")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestManagerRemove(t *testing.T) {
	ks := NewInMemoryKeystore()
	m := NewManager(ks, WithInMemoryStore())
	_, err := m.Import("dev", hardhatKey0)
	require.NoError(t, err)

	require.NoError(t, m.Remove("dev"))
	_, err = m.Get("dev")
	assert.ErrorIs(t, err, ErrWalletNotFound)
	_, err = ks.Retrieve("w3mint.dev")
	assert.Error(t, err, "key must be deleted with the wallet")

	assert.ErrorIs(t, m.Remove("dev"), ErrWalletNotFound)
}

func TestManagerListSorted(t *testing.T) {
	m := NewManager(NewInMemoryKeystore(), WithInMemoryStore())
	_, err := m.Import("zed", hardhatKey0)
	require.NoError(t, err)
	_, err = m.Import("alice", "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d")
	require.NoError(t, err)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Name)
	assert.Equal(t, "zed", list[1].Name)
}

func TestJSONStorePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	ks := NewInMemoryKeystore()

	m1 := NewManager(ks, WithStore(NewJSONStore(path)))
	_, err := m1.Import("dev", hardhatKey0)
	require.NoError(t, err)

	m2 := NewManager(ks, WithStore(NewJSONStore(path)))
	e, err := m2.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr0, e.Address)
}

func TestJSONStoreMissingFile(t *testing.T) {
	entries, err := NewJSONStore(filepath.Join(t.TempDir(), "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
