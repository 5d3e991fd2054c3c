package faucet

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const funderKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeBackend struct {
	sent    []*types.Transaction
	sendErr error
	waitErr error
	polled  time.Duration
}

func (b *fakeBackend) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (b *fakeBackend) ChainID(context.Context) (*big.Int, error) { return big.NewInt(31337), nil }
func (b *fakeBackend) MaxPriorityFeePerGas(context.Context) (*big.Int, error) {
	return big.NewInt(100_000_000), nil
}
func (b *fakeBackend) PendingNonce(context.Context, common.Address) (uint64, error) {
	return uint64(len(b.sent)), nil
}

func (b *fakeBackend) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	if b.sendErr != nil {
		return common.Hash{}, b.sendErr
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	b.sent = append(b.sent, tx)
	return tx.Hash(), nil
}

func (b *fakeBackend) WaitForReceipt(_ context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error) {
	b.polled = interval
	if b.waitErr != nil {
		return nil, b.waitErr
	}
	return &chain.TxReceipt{Hash: hash, Status: 1, BlockNumber: 1, GasUsed: 21_000}, nil
}

type refetchCounter struct {
	calls int
	err   error
}

func (r *refetchCounter) Refetch(context.Context) error {
	r.calls++
	return r.err
}

func newFunder(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.FromKey("funder", funderKey)
	require.NoError(t, err)
	return w
}

func TestNewRequiresLocal(t *testing.T) {
	_, err := New(false, &fakeBackend{}, newFunder(t), big.NewInt(1), nil)
	assert.ErrorIs(t, err, ErrNotLocal)
}

func TestNewValidates(t *testing.T) {
	_, err := New(true, &fakeBackend{}, nil, big.NewInt(1), nil)
	assert.Error(t, err)

	_, err = New(true, &fakeBackend{}, newFunder(t), big.NewInt(0), nil)
	assert.Error(t, err)
}

func TestTopUpSendsAndRefetches(t *testing.T) {
	b := &fakeBackend{}
	session := &refetchCounter{}
	amount := big.NewInt(1_000_000_000_000_000_000)
	funder := newFunder(t)

	f, err := New(true, b, funder, amount, session)
	require.NoError(t, err)
	f.SetPollInterval(10 * time.Millisecond)

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	receipt, err := f.TopUp(context.Background(), to)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)

	require.Len(t, b.sent, 1)
	tx := b.sent[0]
	assert.Equal(t, to, *tx.To())
	assert.Equal(t, amount, tx.Value())
	assert.Equal(t, uint64(21_000), tx.Gas())
	assert.Equal(t, big.NewInt(100_000_000), tx.GasTipCap())
	assert.Equal(t, big.NewInt(1_900_000_000), tx.GasFeeCap())

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, funder.Address(), sender)

	assert.Equal(t, 10*time.Millisecond, b.polled)
	assert.Equal(t, 1, session.calls)
	assert.Equal(t, amount, f.Amount())
}

func TestTopUpRefusesFunderAsRecipient(t *testing.T) {
	b := &fakeBackend{}
	session := &refetchCounter{}
	funder := newFunder(t)
	f, err := New(true, b, funder, big.NewInt(1), session)
	require.NoError(t, err)

	_, err = f.TopUp(context.Background(), funder.Address())
	assert.ErrorIs(t, err, ErrSelfTopUp)
	assert.Empty(t, b.sent)
	assert.Zero(t, session.calls)
}

func TestTopUpBroadcastError(t *testing.T) {
	b := &fakeBackend{sendErr: errors.New("nonce too low")}
	session := &refetchCounter{}
	f, err := New(true, b, newFunder(t), big.NewInt(1), session)
	require.NoError(t, err)

	_, err = f.TopUp(context.Background(), common.HexToAddress("0x01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
	assert.Zero(t, session.calls)
}

func TestTopUpRevert(t *testing.T) {
	b := &fakeBackend{waitErr: chain.ErrTxReverted}
	session := &refetchCounter{}
	f, err := New(true, b, newFunder(t), big.NewInt(1), session)
	require.NoError(t, err)

	_, err = f.TopUp(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, chain.ErrTxReverted)
	assert.Zero(t, session.calls)
}

func TestTopUpRefetchError(t *testing.T) {
	session := &refetchCounter{err: errors.New("rpc down")}
	f, err := New(true, &fakeBackend{}, newFunder(t), big.NewInt(1), session)
	require.NoError(t, err)

	receipt, err := f.TopUp(context.Background(), common.HexToAddress("0x01"))
	require.Error(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, 1, session.calls)
}

func TestTopUpWithoutSession(t *testing.T) {
	f, err := New(true, &fakeBackend{}, newFunder(t), big.NewInt(1), nil)
	require.NoError(t, err)
	_, err = f.TopUp(context.Background(), common.HexToAddress("0x01"))
	assert.NoError(t, err)
}
