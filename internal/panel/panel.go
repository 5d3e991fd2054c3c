// Package panel holds the token mint panel: it reads the token's metadata
// and the session wallet's balance, mints on request and refreshes the
// balance after finality.
package panel

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/metrics"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultMintQuantity is the human-readable amount minted per click.
const DefaultMintQuantity = "5"

// TokenClient is the contract surface the panel drives. *contract.Token
// satisfies it.
type TokenClient interface {
	Name(ctx context.Context, asset contract.AssetID) (string, error)
	Symbol(ctx context.Context, asset contract.AssetID) (string, error)
	Decimals(ctx context.Context, asset contract.AssetID) (uint8, error)
	Mint(ctx context.Context, recipient contract.Identity, subID [32]byte, amount *big.Int) (contract.Pending, error)
}

// ContractFactory binds a token client to (contract address, wallet).
type ContractFactory func(addr common.Address, w *wallet.Wallet) (TokenClient, error)

// TokenView is what the panel shows. A nil field has not been read yet.
type TokenView struct {
	Name     *string
	Symbol   *string
	Decimals *uint8
	Balance  *big.Int
}

// FormattedBalance renders the balance in whole-token units, or "" when
// it is unknown.
func (v TokenView) FormattedBalance() string {
	if v.Balance == nil {
		return ""
	}
	if v.Decimals == nil {
		return v.Balance.String()
	}
	return chain.FormatUnits(v.Balance, *v.Decimals)
}

// Options configures a Panel.
type Options struct {
	ContractAddress common.Address
	// MintQuantity is a decimal amount in whole tokens, scaled by the
	// token's decimals at mint time.
	MintQuantity string
	// MintRaw, when set, is minted as-is in base units.
	MintRaw string
	// Local enables the dev-network faucet.
	Local bool
}

// Option configures optional panel collaborators.
type Option func(*Panel)

// WithMetrics records mint and read outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Panel) { p.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) { p.log = l }
}

// WithOnChange registers a callback run after every state change.
func WithOnChange(fn func()) Option {
	return func(p *Panel) { p.onChange = fn }
}

// Panel is the token mint panel.
type Panel struct {
	opts     Options
	asset    contract.AssetID
	factory  ContractFactory
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	onChange func()

	mu      sync.Mutex
	wallet  *wallet.Wallet
	reading *wallet.Wallet // wallet whose reads are in flight
	client  TokenClient
	view    TokenView
	loading bool
	lastErr error
}

// New creates a panel for opts.ContractAddress.
func New(opts Options, factory ContractFactory, notifier notify.Notifier, options ...Option) *Panel {
	if opts.MintQuantity == "" {
		opts.MintQuantity = DefaultMintQuantity
	}
	p := &Panel{
		opts:     opts,
		asset:    contract.NewAssetID(opts.ContractAddress, contract.ZeroBytes32),
		factory:  factory,
		notifier: notifier,
		log:      slog.Default(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// AssetID is the asset the panel reads and mints.
func (p *Panel) AssetID() contract.AssetID { return p.asset }

// Options returns the panel's configuration.
func (p *Panel) Options() Options { return p.opts }

// View returns a snapshot of the token view.
func (p *Panel) View() TokenView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	if v.Balance != nil {
		v.Balance = new(big.Int).Set(v.Balance)
	}
	return v
}

// Loading reports whether a mint is in flight.
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Ready reports whether a wallet is connected and the token client is built.
func (p *Panel) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallet != nil && p.client != nil
}

// Wallet returns the session wallet the panel is bound to, or nil.
func (p *Panel) Wallet() *wallet.Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallet
}

// LastError returns the most recent read or mint error, or nil.
func (p *Panel) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Attach follows the provider's session. The current wallet, if any, is
// initialised right away. The returned function detaches.
func (p *Panel) Attach(ctx context.Context, provider *wallet.Provider) func() {
	unsubscribe := provider.Subscribe(func(w *wallet.Wallet) {
		if err := p.OnSession(ctx, w); err != nil {
			p.log.Error("token view init failed", "error", err)
		}
	})
	if w := provider.Current(); w != nil {
		if err := p.OnSession(ctx, w); err != nil {
			p.log.Error("token view init failed", "error", err)
		}
	}
	return unsubscribe
}

// OnSession reacts to a session change. A nil wallet clears the panel. A
// wallet already initialised, or being initialised, is a no-op. Otherwise the token client is
// built and the name, symbol, decimals and balance are read. On a read
// error nothing is stored, so the next session event retries.
func (p *Panel) OnSession(ctx context.Context, w *wallet.Wallet) error {
	p.mu.Lock()
	if w == nil {
		had := p.wallet != nil
		p.resetLocked()
		p.mu.Unlock()
		if had {
			p.log.Info("session cleared")
			p.changed()
		}
		return nil
	}
	if p.wallet == w && (p.client != nil || p.reading == w) {
		p.mu.Unlock()
		return nil
	}
	if p.wallet != w {
		p.resetLocked()
		p.wallet = w
	}
	p.reading = w
	p.mu.Unlock()
	p.changed()

	log := p.log.With("wallet", w.Address().Hex(), "asset", p.asset.Hex())

	client, view, err := p.readToken(ctx, w)
	p.mu.Lock()
	if p.reading == w {
		p.reading = nil
	}
	if err != nil {
		if p.wallet == w {
			p.lastErr = err
		}
		p.mu.Unlock()
		p.metrics.ObserveRead(metrics.ResultFailure)
		log.Warn("token read failed", "error", err)
		p.changed()
		return err
	}
	if p.wallet != w {
		// Session moved on while reading.
		p.mu.Unlock()
		p.metrics.ObserveRead(metrics.ResultSuccess)
		return nil
	}
	p.client = client
	p.view = view
	p.lastErr = nil
	p.mu.Unlock()
	p.metrics.ObserveRead(metrics.ResultSuccess)

	log.Info("token view ready", "symbol", *view.Symbol, "decimals", *view.Decimals, "balance", view.Balance.String())
	p.changed()
	return nil
}

func (p *Panel) readToken(ctx context.Context, w *wallet.Wallet) (TokenClient, TokenView, error) {
	client, err := p.factory(p.opts.ContractAddress, w)
	if err != nil {
		return nil, TokenView{}, fmt.Errorf("binding token contract: %w", err)
	}
	symbol, err := client.Symbol(ctx, p.asset)
	if err != nil {
		return nil, TokenView{}, fmt.Errorf("reading symbol: %w", err)
	}
	decimals, err := client.Decimals(ctx, p.asset)
	if err != nil {
		return nil, TokenView{}, fmt.Errorf("reading decimals: %w", err)
	}
	name, err := client.Name(ctx, p.asset)
	if err != nil {
		return nil, TokenView{}, fmt.Errorf("reading name: %w", err)
	}
	balance, err := w.GetBalance(ctx, p.asset)
	if err != nil {
		return nil, TokenView{}, fmt.Errorf("reading balance: %w", err)
	}
	return client, TokenView{Name: &name, Symbol: &symbol, Decimals: &decimals, Balance: balance}, nil
}

// Mint mints the configured quantity to the session wallet, waits for
// finality, re-reads the balance and notifies. Without a wallet or token
// client it returns nil and does nothing. The loading flag is set for the
// whole call and cleared on every exit path.
//
// Callers are expected to not call Mint while Loading is true; a second
// concurrent call is not rejected.
func (p *Panel) Mint(ctx context.Context) (err error) {
	start := time.Now()
	p.setLoading(true)
	defer p.setLoading(false)

	p.mu.Lock()
	w, client, view := p.wallet, p.client, p.view
	p.mu.Unlock()

	if w == nil || client == nil {
		p.metrics.ObserveMint(metrics.ResultSkipped, 0)
		p.log.Debug("mint skipped: no session")
		return nil
	}

	defer func() {
		if err != nil {
			p.metrics.ObserveMint(metrics.ResultFailure, time.Since(start))
			p.notifier.NotifyError(err.Error())
			p.setError(err)
			return
		}
		p.metrics.ObserveMint(metrics.ResultSuccess, time.Since(start))
	}()

	amount, err := p.amount(view)
	if err != nil {
		return err
	}

	log := p.log.With("wallet", w.Address().Hex(), "asset", p.asset.Hex(), "amount", amount.String())

	pending, err := client.Mint(ctx, contract.AddressIdentity(w.Bits()), contract.ZeroBytes32, amount)
	if err != nil {
		return err
	}
	log = log.With("tx", pending.Hash().Hex())
	log.Info("mint submitted")
	p.notifier.NotifySubmit("Transaction submitted: " + pending.Hash().Hex())

	if _, err := pending.WaitForResult(ctx); err != nil {
		return err
	}

	balance, err := w.GetBalance(ctx, p.asset)
	if err != nil {
		return fmt.Errorf("refreshing balance: %w", err)
	}

	p.mu.Lock()
	if p.wallet == w {
		p.view.Balance = balance
		p.lastErr = nil
	}
	p.mu.Unlock()

	log.Info("mint confirmed", "balance", balance.String())
	p.notifier.NotifySuccess(p.successMessage(view))
	return nil
}

// amount is the mint amount in base units.
func (p *Panel) amount(view TokenView) (*big.Int, error) {
	if p.opts.MintRaw != "" {
		raw, ok := new(big.Int).SetString(strings.TrimSpace(p.opts.MintRaw), 10)
		if !ok || raw.Sign() <= 0 {
			return nil, fmt.Errorf("invalid raw mint amount %q", p.opts.MintRaw)
		}
		return raw, nil
	}
	var decimals uint8
	if view.Decimals != nil {
		decimals = *view.Decimals
	}
	return chain.ParseUnits(p.opts.MintQuantity, decimals)
}

func (p *Panel) successMessage(view TokenView) string {
	symbol := ""
	if view.Symbol != nil {
		symbol = *view.Symbol
	}
	qty := p.opts.MintQuantity
	if p.opts.MintRaw != "" {
		qty = p.opts.MintRaw
		if view.Decimals != nil {
			if raw, ok := new(big.Int).SetString(strings.TrimSpace(p.opts.MintRaw), 10); ok {
				qty = trimZeros(chain.FormatUnits(raw, *view.Decimals))
			}
		}
	}
	return fmt.Sprintf("Minted %s $%s", qty, symbol)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}

func (p *Panel) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
	p.changed()
}

func (p *Panel) setError(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	p.changed()
}

func (p *Panel) resetLocked() {
	p.wallet = nil
	p.reading = nil
	p.client = nil
	p.view = TokenView{}
	p.lastErr = nil
}

func (p *Panel) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
