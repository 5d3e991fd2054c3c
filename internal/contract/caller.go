package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrReadOnly is returned by Mint on a token built without a signer.
var ErrReadOnly = errors.New("token client has no signer")

// Backend is the RPC surface the token client needs. *chain.EVMClient
// satisfies it.
type Backend interface {
	CallContract(ctx context.Context, from *common.Address, to common.Address, data []byte) ([]byte, error)
	EstimateGas(ctx context.Context, from common.Address, to *common.Address, data []byte, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs transactions on behalf of one address.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Token is a client for one multi-asset token contract, bound to a wallet.
type Token struct {
	address      common.Address
	backend      Backend
	signer       TxSigner
	pollInterval time.Duration
	log          *slog.Logger
}

// Option configures a Token.
type Option func(*Token)

// WithPollInterval overrides the receipt polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(t *Token) { t.pollInterval = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Token) { t.log = l }
}

// NewToken binds a token client to address. signer may be nil for a
// read-only client.
func NewToken(address common.Address, backend Backend, signer TxSigner, opts ...Option) *Token {
	t := &Token{
		address:      address,
		backend:      backend,
		signer:       signer,
		pollInterval: config.ReceiptPollInterval,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Address returns the contract address.
func (t *Token) Address() common.Address { return t.address }

// Name returns the asset's name.
func (t *Token) Name(ctx context.Context, asset AssetID) (string, error) {
	var name string
	if err := t.read(ctx, &name, "name", [32]byte(asset)); err != nil {
		return "", err
	}
	return name, nil
}

// Symbol returns the asset's ticker symbol.
func (t *Token) Symbol(ctx context.Context, asset AssetID) (string, error) {
	var sym string
	if err := t.read(ctx, &sym, "symbol", [32]byte(asset)); err != nil {
		return "", err
	}
	return sym, nil
}

// Decimals returns the asset's decimal places.
func (t *Token) Decimals(ctx context.Context, asset AssetID) (uint8, error) {
	var d uint8
	if err := t.read(ctx, &d, "decimals", [32]byte(asset)); err != nil {
		return 0, err
	}
	return d, nil
}

// TotalSupply returns the asset's total minted supply.
func (t *Token) TotalSupply(ctx context.Context, asset AssetID) (*big.Int, error) {
	var n *big.Int
	if err := t.read(ctx, &n, "totalSupply", [32]byte(asset)); err != nil {
		return nil, err
	}
	return n, nil
}

// BalanceOf returns owner's balance of asset in base units.
func (t *Token) BalanceOf(ctx context.Context, owner B256, asset AssetID) (*big.Int, error) {
	var n *big.Int
	if err := t.read(ctx, &n, "balanceOf", [32]byte(owner), [32]byte(asset)); err != nil {
		return nil, err
	}
	return n, nil
}

// read packs a view call, runs it through eth_call and unpacks the single
// return value into out.
func (t *Token) read(ctx context.Context, out any, method string, args ...any) error {
	data, err := tokenABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}

	var from *common.Address
	if t.signer != nil {
		a := t.signer.Address()
		from = &a
	}

	raw, err := t.backend.CallContract(ctx, from, t.address, data)
	if err != nil {
		return fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s: empty result (is %s a token contract?)", method, t.address.Hex())
	}

	if err := tokenABI.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("decoding %s: %w", method, err)
	}
	t.log.Debug("token read", "method", method, "contract", t.address.Hex())
	return nil
}
