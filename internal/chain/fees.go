package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/config"
)

// FeeSource is the RPC surface SuggestFees reads.
type FeeSource interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
}

// SuggestFees returns the tip and fee cap for a DynamicFeeTx. The base fee
// is taken as eth_gasPrice minus the tip and the cap is 2*base + tip. Nodes
// without eth_maxPriorityFeePerGas get config.DefaultPriorityFeeWei.
func SuggestFees(ctx context.Context, src FeeSource) (tip, feeCap *big.Int, err error) {
	gasPrice, err := src.GasPrice(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err = src.MaxPriorityFeePerGas(ctx)
	if err != nil || tip == nil || tip.Sign() < 0 {
		tip = big.NewInt(config.DefaultPriorityFeeWei)
	}
	if tip.Cmp(gasPrice) > 0 {
		tip = new(big.Int).Set(gasPrice)
	}
	base := new(big.Int).Sub(gasPrice, tip)
	feeCap = new(big.Int).Add(new(big.Int).Mul(base, big.NewInt(2)), tip)
	return tip, feeCap, nil
}
