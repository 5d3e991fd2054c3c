package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/faucet"
	"github.com/Mohsinsiddi/w3mint/internal/metrics"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/panel"
	"github.com/Mohsinsiddi/w3mint/internal/rpc"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// session is everything a panel-backed command needs.
type session struct {
	client   *chain.EVMClient
	provider *wallet.Provider
	panel    *panel.Panel
	metrics  *metrics.Metrics
	detach   func()
}

func newWalletManager() *wallet.Manager {
	store := wallet.NewJSONStore(filepath.Join(cfg.Dir(), "wallets.json"))
	return wallet.NewManager(wallet.DefaultKeystore(cfg.Dir()), wallet.WithStore(store))
}

// tokenFactory binds token clients to the session wallet as signer.
func tokenFactory(client *chain.EVMClient) panel.ContractFactory {
	return func(addr common.Address, w *wallet.Wallet) (panel.TokenClient, error) {
		if w == nil {
			return nil, errors.New("no wallet")
		}
		return contract.NewToken(addr, client, w, contract.WithLogger(slog.Default())), nil
	}
}

// buildNotifier sends to sink and, when configured, to Slack.
func buildNotifier(sink notify.Notifier, walletName string) notify.Notifier {
	if cfg.SlackWebhookURL == "" {
		return sink
	}
	return notify.Multi{sink, notify.NewSlack(cfg.SlackWebhookURL, walletName, slog.Default())}
}

// openWallet unlocks the --wallet / default wallet. With neither set,
// W3MINT_KEY is used directly.
func openWallet(opts ...wallet.Option) (*wallet.Wallet, error) {
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		if key := os.Getenv(wallet.KeyEnvVar); key != "" {
			return wallet.FromKey("env", key, opts...)
		}
		return nil, fmt.Errorf("no wallet selected: run `w3mint wallet import <name> --key ...` then `w3mint wallet use <name>`")
	}
	w, err := newWalletManager().Open(name, opts...)
	if errors.Is(err, wallet.ErrWalletNotFound) {
		return nil, fmt.Errorf("wallet %q not found: run `w3mint wallet list`", name)
	}
	return w, err
}

// dialRPC picks one of the configured rpc_url endpoints.
func dialRPC(ctx context.Context) (*chain.EVMClient, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCStrategy)
	if err != nil {
		return nil, err
	}
	url, err := rpc.Select(ctx, rpc.SplitURLs(cfg.RPCURL), algo, cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("selecting rpc from %q: %w", cfg.RPCURL, err)
	}
	slog.Debug("rpc selected", "url", url, "strategy", algo)
	return chain.NewEVMClient(url), nil
}

// checkChain rejects an RPC whose chain id differs from the configured one.
func checkChain(ctx context.Context, client *chain.EVMClient) error {
	if cfg.ChainID == 0 {
		return nil
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("querying chain id: %w", err)
	}
	if id.Int64() != cfg.ChainID {
		return fmt.Errorf("rpc %s is chain %s, config expects %d", client.URL(), id, cfg.ChainID)
	}
	return nil
}

// newSession validates config, connects the wallet and initialises the
// panel. sink receives the panel's notifications.
func newSession(ctx context.Context, sink notify.Notifier, opts ...panel.Option) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := dialRPC(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkChain(ctx, client); err != nil {
		return nil, err
	}

	addr := common.HexToAddress(cfg.ContractAddress)
	w, err := openWallet(
		wallet.WithLedger(contract.NewToken(addr, client, nil)),
		wallet.WithNative(client),
	)
	if err != nil {
		return nil, err
	}

	s := &session{
		client:   client,
		provider: wallet.NewProvider(slog.Default()),
	}
	if metricsAddr != "" {
		s.metrics = metrics.New()
		go func() {
			if err := s.metrics.Serve(ctx, metricsAddr); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	opts = append([]panel.Option{panel.WithMetrics(s.metrics), panel.WithLogger(slog.Default())}, opts...)
	s.panel = panel.New(panel.Options{
		ContractAddress: addr,
		MintQuantity:    cfg.MintQuantity,
		MintRaw:         cfg.MintRaw,
		Local:           cfg.Local,
	}, tokenFactory(client), buildNotifier(sink, w.Name), opts...)

	s.detach = s.panel.Attach(ctx, s.provider)
	s.provider.Connect(w)
	return s, nil
}

// close detaches the panel and ends the wallet session.
func (s *session) close() {
	s.detach()
	s.provider.Disconnect()
}

// init returns the error of the last initialisation attempt, if it failed.
func (s *session) initErr() error {
	if s.panel.Ready() {
		return nil
	}
	if err := s.panel.LastError(); err != nil {
		return err
	}
	return errors.New("token view not initialised")
}

// newFaucet builds the local faucet funded by the faucet_key_ref key.
func (s *session) newFaucet() (*faucet.Faucet, error) {
	if !cfg.Local {
		return nil, faucet.ErrNotLocal
	}
	if cfg.FaucetKeyRef == "" {
		return nil, errors.New("faucet_key_ref is not set: store a funded dev key with `w3mint wallet import` and set its key ref")
	}
	hexKey, err := wallet.DefaultKeystore(cfg.Dir()).Retrieve(cfg.FaucetKeyRef)
	if err != nil {
		return nil, fmt.Errorf("faucet key: %w", err)
	}
	funder, err := wallet.FromKey("faucet", hexKey)
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(cfg.FaucetAmountWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid faucet_amount_wei %q", cfg.FaucetAmountWei)
	}
	return faucet.New(cfg.Local, s.client, funder, amount, s.provider)
}

// topUp sends the faucet amount to the session wallet.
func (s *session) topUp(ctx context.Context) error {
	w := s.provider.Current()
	if w == nil {
		return errors.New("no wallet connected")
	}
	f, err := s.newFaucet()
	if err != nil {
		return err
	}
	_, err = f.TopUp(ctx, w.Address())
	return err
}
