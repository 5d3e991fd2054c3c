package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitTransfer = uint64(21_000)  // native faucet top-up
	GasLimitMint     = uint64(120_000) // multi-asset mint
)

// Timeouts and polling.
const (
	TxConfirmTimeout    = 3 * time.Minute // CLI-level wait for mint finality
	ReceiptPollInterval = 2 * time.Second
	RPCTimeout          = 15 * time.Second
)

// DefaultPriorityFeeWei is the tip used when the node has no
// eth_maxPriorityFeePerGas (1 gwei).
const DefaultPriorityFeeWei = int64(1_000_000_000)

// DefaultFaucetAmountWei is 1 native coin at 18 decimals.
const DefaultFaucetAmountWei = "1000000000000000000"
