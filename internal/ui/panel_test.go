package ui

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/panel"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type stubLedger struct {
	mu  sync.Mutex
	bal int64
}

func (l *stubLedger) BalanceOf(context.Context, contract.B256, contract.AssetID) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return big.NewInt(l.bal), nil
}

type stubToken struct {
	ledger  *stubLedger
	mintErr error
	block   chan struct{}
}

func (s *stubToken) Name(context.Context, contract.AssetID) (string, error)    { return "Dhai Token", nil }
func (s *stubToken) Symbol(context.Context, contract.AssetID) (string, error)  { return "DHAI", nil }
func (s *stubToken) Decimals(context.Context, contract.AssetID) (uint8, error) { return 6, nil }

func (s *stubToken) Mint(_ context.Context, _ contract.Identity, _ [32]byte, amount *big.Int) (contract.Pending, error) {
	if s.mintErr != nil {
		return nil, s.mintErr
	}
	return &stubPending{token: s, amount: amount}, nil
}

type stubPending struct {
	token  *stubToken
	amount *big.Int
}

func (p *stubPending) Hash() common.Hash { return common.HexToHash("0x01") }

func (p *stubPending) WaitForResult(context.Context) (*chain.TxReceipt, error) {
	if p.token.block != nil {
		<-p.token.block
	}
	p.token.ledger.mu.Lock()
	p.token.ledger.bal += p.amount.Int64()
	p.token.ledger.mu.Unlock()
	return &chain.TxReceipt{Status: 1}, nil
}

func newModel(t *testing.T, local bool, tok *stubToken, connect bool) (PanelModel, *notify.Recorder) {
	t.Helper()
	notes := &notify.Recorder{}
	p := panel.New(panel.Options{
		ContractAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Local:           local,
	}, func(common.Address, *wallet.Wallet) (panel.TokenClient, error) { return tok, nil }, notes)

	if connect {
		w, err := wallet.FromKey("dev", testKey, wallet.WithLedger(tok.ledger))
		require.NoError(t, err)
		require.NoError(t, p.OnSession(context.Background(), w))
	}
	return NewPanelModel(context.Background(), p), notes
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd, expanding batches, and returns the produced messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func update(m PanelModel, msg tea.Msg) (PanelModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(PanelModel), cmd
}

func TestHeading(t *testing.T) {
	name, symbol := "Dhai Token", "DHAI"
	assert.Equal(t, "Token Dhai Token $DHAI", Heading(panel.TokenView{Name: &name, Symbol: &symbol}))
	assert.Equal(t, "Token  $", Heading(panel.TokenView{}))
}

func TestViewShowsTokenAndBalance(t *testing.T) {
	m, _ := newModel(t, false, &stubToken{ledger: &stubLedger{bal: 2_500_000}}, true)

	out := m.View()
	assert.Contains(t, out, "Token Dhai Token $DHAI")
	assert.Contains(t, out, "Token Balance: ")
	assert.Contains(t, out, "2.500000")
	assert.Contains(t, out, "Mint")
	assert.Contains(t, out, DocMultiToken)
	assert.NotContains(t, out, "Local faucet")
	assert.False(t, m.MintDisabled())
}

func TestViewWithoutWallet(t *testing.T) {
	m, _ := newModel(t, false, &stubToken{ledger: &stubLedger{}}, false)
	assert.Contains(t, m.View(), "No wallet connected")
}

func TestFaucetOnlyWhenLocal(t *testing.T) {
	tok := &stubToken{ledger: &stubLedger{}}

	m, _ := newModel(t, true, tok, true)
	m.Faucet = func(context.Context) error { return nil }
	m.FaucetLabel = "1.0 ETH"
	assert.Contains(t, m.View(), "Local faucet: 1.0 ETH")
	assert.Contains(t, m.View(), "[ f ]")

	remote, _ := newModel(t, false, tok, true)
	remote.Faucet = func(context.Context) error { return nil }
	assert.NotContains(t, remote.View(), "Local faucet")
	_, cmd := update(remote, key("f"))
	assert.Nil(t, cmd)
}

func TestMintKeyRunsMintAndReEnables(t *testing.T) {
	tok := &stubToken{ledger: &stubLedger{}}
	m, notes := newModel(t, false, tok, true)

	m, cmd := update(m, key("m"))
	require.NotNil(t, cmd)
	assert.True(t, m.MintDisabled())

	// A second press while minting is ignored.
	_, again := update(m, key("m"))
	assert.Nil(t, again)

	for _, msg := range runCmd(cmd) {
		m, _ = update(m, msg)
	}
	assert.False(t, m.MintDisabled())
	assert.Contains(t, m.View(), "5.000000")

	events := notes.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Minted 5 $DHAI", events[1].Message)
}

func TestMintButtonDisabledWhileLoading(t *testing.T) {
	tok := &stubToken{ledger: &stubLedger{}, block: make(chan struct{})}
	m, _ := newModel(t, false, tok, true)

	done := make(chan struct{})
	go func() {
		_ = m.Panel.Mint(context.Background())
		close(done)
	}()
	require.Eventually(t, m.Panel.Loading, timeout, tick)

	assert.True(t, m.MintDisabled())
	assert.Contains(t, m.View(), "minting…")
	_, cmd := update(m, key("m"))
	assert.Nil(t, cmd)

	close(tok.block)
	<-done
	assert.False(t, m.MintDisabled())
}

func TestMintErrorShown(t *testing.T) {
	tok := &stubToken{ledger: &stubLedger{}, mintErr: errors.New("insufficient funds")}
	m, notes := newModel(t, false, tok, true)

	m, cmd := update(m, key("m"))
	for _, msg := range runCmd(cmd) {
		m, _ = update(m, msg)
	}
	for _, e := range notes.Events() {
		m, _ = update(m, NoticeMsg(e))
	}

	out := m.View()
	assert.Contains(t, out, "insufficient funds")
	assert.Equal(t, 1, strings.Count(out, "insufficient funds"))
	assert.False(t, m.MintDisabled())
}

func TestNoticesAreCapped(t *testing.T) {
	m, _ := newModel(t, false, &stubToken{ledger: &stubLedger{}}, true)
	for i := 0; i < maxNotices+3; i++ {
		m, _ = update(m, NoticeMsg{Kind: notify.KindSubmit, Message: "n"})
	}
	assert.Len(t, m.notices, maxNotices)
}

func TestFaucetKey(t *testing.T) {
	calls := 0
	m, _ := newModel(t, true, &stubToken{ledger: &stubLedger{}}, true)
	m.Faucet = func(context.Context) error { calls++; return nil }

	m, cmd := update(m, key("f"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "topping up")

	_, again := update(m, key("f"))
	assert.Nil(t, again)

	for _, msg := range runCmd(cmd) {
		m, _ = update(m, msg)
	}
	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Faucet top-up confirmed")
}

func TestFaucetError(t *testing.T) {
	m, _ := newModel(t, true, &stubToken{ledger: &stubLedger{}}, true)
	m.Faucet = func(context.Context) error { return errors.New("funder empty") }

	m, cmd := update(m, key("f"))
	for _, msg := range runCmd(cmd) {
		m, _ = update(m, msg)
	}
	assert.Contains(t, m.View(), "faucet: funder empty")
}

func TestRefreshKey(t *testing.T) {
	m, _ := newModel(t, false, &stubToken{ledger: &stubLedger{}}, true)
	_, cmd := update(m, key("r"))
	assert.Nil(t, cmd, "no refresh func wired")

	calls := 0
	m.Refresh = func(context.Context) error { calls++; return errors.New("rpc down") }
	m, cmd = update(m, key("r"))
	for _, msg := range runCmd(cmd) {
		m, _ = update(m, msg)
	}
	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "rpc down")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, false, &stubToken{ledger: &stubLedger{}}, true)
	m, cmd := update(m, key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting)
	assert.Equal(t, "", m.View())
}
