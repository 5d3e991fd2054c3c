package wallet

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
)

// Listener receives the session's wallet on every change; nil means the
// wallet disconnected.
type Listener func(w *Wallet)

// Provider holds the current wallet session and fans changes out to
// subscribers.
type Provider struct {
	mu        sync.Mutex
	current   *Wallet
	native    *big.Int
	listeners map[int]Listener
	nextID    int
	log       *slog.Logger
}

// NewProvider returns a provider with no wallet connected.
func NewProvider(log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{listeners: make(map[int]Listener), log: log}
}

// Current returns the connected wallet, or nil.
func (p *Provider) Current() *Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// NativeBalance returns the native balance read by the last Refetch.
func (p *Provider) NativeBalance() *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.native == nil {
		return nil
	}
	return new(big.Int).Set(p.native)
}

// Subscribe registers fn and returns a function that removes it.
func (p *Provider) Subscribe(fn Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Connect makes w the session wallet.
func (p *Provider) Connect(w *Wallet) {
	p.mu.Lock()
	p.current = w
	p.native = nil
	p.mu.Unlock()
	p.log.Info("wallet connected", "wallet", w.Name, "address", w.Address().Hex())
	p.publish(w)
}

// Disconnect ends the session.
func (p *Provider) Disconnect() {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.native = nil
	p.mu.Unlock()
	if had {
		p.log.Info("wallet disconnected")
		p.publish(nil)
	}
}

// Refetch re-reads wallet and network state (native balance) and
// re-announces the current session. Used after faucet top-ups.
func (p *Provider) Refetch(ctx context.Context) error {
	w := p.Current()
	if w == nil {
		return nil
	}
	bal, err := w.NativeBalance(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.native = bal
	p.mu.Unlock()
	p.log.Debug("session refetched", "address", w.Address().Hex(), "native_wei", bal.String())
	p.publish(w)
	return nil
}

func (p *Provider) publish(w *Wallet) {
	p.mu.Lock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.Unlock()

	for _, l := range ls {
		l(w)
	}
}
