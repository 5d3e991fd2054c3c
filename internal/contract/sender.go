package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Pending is a submitted transaction whose outcome is not yet known.
type Pending interface {
	Hash() common.Hash
	WaitForResult(ctx context.Context) (*chain.TxReceipt, error)
}

// PendingTx is the Pending returned by Token.Mint.
type PendingTx struct {
	hash     common.Hash
	backend  Backend
	interval time.Duration
}

// Hash returns the transaction hash.
func (p *PendingTx) Hash() common.Hash { return p.hash }

// WaitForResult blocks until the transaction is mined or ctx is done.
// A reverted transaction is an error wrapping chain.ErrTxReverted.
func (p *PendingTx) WaitForResult(ctx context.Context) (*chain.TxReceipt, error) {
	return p.backend.WaitForReceipt(ctx, p.hash, p.interval)
}

// Mint submits mint(recipient, subID, amount). It returns as soon as the
// transaction is accepted by the node; call WaitForResult for finality.
func (t *Token) Mint(ctx context.Context, recipient Identity, subID [32]byte, amount *big.Int) (Pending, error) {
	if recipient.Address == nil {
		return nil, errors.New("mint: recipient has no address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("mint: amount must be positive")
	}
	data, err := tokenABI.Pack("mint", [32]byte(recipient.Address.Bits), subID, amount)
	if err != nil {
		return nil, fmt.Errorf("encoding mint: %w", err)
	}

	hash, err := t.send(ctx, data, config.GasLimitMint)
	if err != nil {
		return nil, err
	}
	t.log.Info("mint submitted",
		"tx", hash.Hex(),
		"contract", t.address.Hex(),
		"recipient", recipient.Address.Bits.Hex(),
		"amount", amount.String())
	return &PendingTx{hash: hash, backend: t.backend, interval: t.pollInterval}, nil
}

// send signs and broadcasts a call to the token contract.
func (t *Token) send(ctx context.Context, data []byte, fallbackGas uint64) (common.Hash, error) {
	if t.signer == nil {
		return common.Hash{}, ErrReadOnly
	}
	from := t.signer.Address()

	gas, err := t.backend.EstimateGas(ctx, from, &t.address, data, nil)
	if err != nil {
		t.log.Warn("gas estimate failed, using fallback", "error", err, "fallback", fallbackGas)
		gas = fallbackGas
	}

	tip, feeCap, err := chain.SuggestFees(ctx, t.backend)
	if err != nil {
		return common.Hash{}, err
	}
	chainID, err := t.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting chain id: %w", err)
	}
	nonce, err := t.backend.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	to := t.address
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      data,
	})

	raw, err := t.signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := t.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}
