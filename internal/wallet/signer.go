package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoLedger is returned by GetBalance on a wallet with no asset ledger.
var ErrNoLedger = errors.New("wallet has no asset ledger")

// AssetLedger reports per-asset balances keyed by a 32-byte owner word.
type AssetLedger interface {
	BalanceOf(ctx context.Context, owner contract.B256, asset contract.AssetID) (*big.Int, error)
}

// NativeReader reports native coin balances.
type NativeReader interface {
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
}

// Wallet is an unlocked signing wallet.
type Wallet struct {
	Name string

	address common.Address
	key     *ecdsa.PrivateKey
	ledger  AssetLedger
	native  NativeReader
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithLedger sets where asset balances are read from.
func WithLedger(l AssetLedger) Option {
	return func(w *Wallet) { w.ledger = l }
}

// WithNative sets where native balances are read from.
func WithNative(r NativeReader) Option {
	return func(w *Wallet) { w.native = r }
}

// FromKey unlocks a wallet from a hex private key.
func FromKey(name, hexKey string, opts ...Option) (*Wallet, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	w := &Wallet{
		Name:    name,
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Address returns the wallet's EVM address.
func (w *Wallet) Address() common.Address { return w.address }

// Bits returns the address left-padded to 32 bytes.
func (w *Wallet) Bits() contract.B256 { return contract.Bits(w.address) }

// GetBalance returns the wallet's balance of asset.
func (w *Wallet) GetBalance(ctx context.Context, asset contract.AssetID) (*big.Int, error) {
	if w.ledger == nil {
		return nil, ErrNoLedger
	}
	bal, err := w.ledger.BalanceOf(ctx, w.Bits(), asset)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", asset.Hex(), err)
	}
	return bal, nil
}

// NativeBalance returns the wallet's native coin balance in wei.
func (w *Wallet) NativeBalance(ctx context.Context) (*big.Int, error) {
	if w.native == nil {
		return nil, errors.New("wallet has no native balance reader")
	}
	return w.native.BalanceAt(ctx, w.address)
}

// SignTx signs an EVM transaction and returns the raw signed bytes.
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}
