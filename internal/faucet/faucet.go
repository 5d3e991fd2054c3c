// Package faucet tops up session wallets with native coin on a local dev
// network.
package faucet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNotLocal is returned when a faucet is requested off a local network.
var ErrNotLocal = errors.New("faucet is only available on a local network")

// ErrSelfTopUp is returned when the recipient is the funder account itself.
var ErrSelfTopUp = errors.New("faucet funder and recipient are the same account")

// Backend is the RPC surface the faucet needs.
type Backend interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// Refetcher re-reads session state after a top-up.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Faucet sends a fixed amount from a funded dev account.
type Faucet struct {
	backend Backend
	funder  contract.TxSigner
	amount  *big.Int
	session Refetcher
	poll    time.Duration
	log     *slog.Logger
}

// New returns a faucet paying amount wei from funder. session may be nil.
func New(local bool, backend Backend, funder contract.TxSigner, amount *big.Int, session Refetcher) (*Faucet, error) {
	if !local {
		return nil, ErrNotLocal
	}
	if funder == nil {
		return nil, errors.New("faucet: no funder account")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("faucet: amount must be positive")
	}
	return &Faucet{
		backend: backend,
		funder:  funder,
		amount:  new(big.Int).Set(amount),
		session: session,
		poll:    config.ReceiptPollInterval,
		log:     slog.Default(),
	}, nil
}

// SetPollInterval overrides the receipt polling interval.
func (f *Faucet) SetPollInterval(d time.Duration) { f.poll = d }

// Amount returns the top-up amount in wei.
func (f *Faucet) Amount() *big.Int { return new(big.Int).Set(f.amount) }

// TopUp transfers the faucet amount to to, waits for it to be mined and
// refetches the session.
func (f *Faucet) TopUp(ctx context.Context, to common.Address) (*chain.TxReceipt, error) {
	from := f.funder.Address()
	if to == from {
		return nil, ErrSelfTopUp
	}

	tip, feeCap, err := chain.SuggestFees(ctx, f.backend)
	if err != nil {
		return nil, err
	}
	chainID, err := f.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	nonce, err := f.backend.PendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       config.GasLimitTransfer,
		To:        &to,
		Value:     f.amount,
	})
	raw, err := f.funder.SignTx(tx, chainID)
	if err != nil {
		return nil, err
	}
	hash, err := f.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("broadcasting top-up: %w", err)
	}
	f.log.Info("faucet top-up submitted", "tx", hash.Hex(), "to", to.Hex(), "amount", f.amount.String())

	receipt, err := f.backend.WaitForReceipt(ctx, hash, f.poll)
	if err != nil {
		return nil, err
	}

	if f.session != nil {
		if err := f.session.Refetch(ctx); err != nil {
			return receipt, fmt.Errorf("refetching session: %w", err)
		}
	}
	return receipt, nil
}
