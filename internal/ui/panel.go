package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/panel"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxNotices = 4

// Documentation shown under the panel.
const (
	DocMultiToken = "https://eips.ethereum.org/EIPS/eip-6909"
	DocContracts  = "https://docs.soliditylang.org/en/latest/contracts.html"
)

// StateMsg tells the model the panel's state changed.
type StateMsg struct{}

// NoticeMsg carries a notification into the model.
type NoticeMsg notify.Event

type mintDoneMsg struct{ err error }

type faucetDoneMsg struct{ err error }

type refreshDoneMsg struct{ err error }

// PanelModel is the Bubble Tea model for the token mint panel.
type PanelModel struct {
	Panel *panel.Panel
	// Faucet tops up the session wallet. Only offered on a local network.
	Faucet      func(ctx context.Context) error
	FaucetLabel string
	// Refresh re-reads the session.
	Refresh func(ctx context.Context) error

	ctx      context.Context
	spinner  spinner.Model
	minting  bool
	topping  bool
	notices  []notify.Event
	errMsg   string
	Quitting bool
}

// NewPanelModel wraps p. ctx bounds every command the model starts.
func NewPanelModel(ctx context.Context, p *panel.Panel) PanelModel {
	return PanelModel{
		Panel:   p,
		ctx:     ctx,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleToken)),
	}
}

func (m PanelModel) Init() tea.Cmd { return nil }

// MintDisabled reports whether the Mint button is disabled.
func (m PanelModel) MintDisabled() bool {
	return m.minting || m.Panel.Loading()
}

func (m PanelModel) faucetEnabled() bool {
	return m.Panel.Options().Local && m.Faucet != nil
}

func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "m", "enter":
			if m.MintDisabled() {
				return m, nil
			}
			m.minting = true
			m.errMsg = ""
			p, ctx := m.Panel, m.ctx
			return m, tea.Batch(
				func() tea.Msg { return mintDoneMsg{err: p.Mint(ctx)} },
				m.spinner.Tick,
			)

		case "f":
			if !m.faucetEnabled() || m.topping {
				return m, nil
			}
			m.topping = true
			fn, ctx := m.Faucet, m.ctx
			return m, func() tea.Msg { return faucetDoneMsg{err: fn(ctx)} }

		case "r":
			if m.Refresh == nil {
				return m, nil
			}
			fn, ctx := m.Refresh, m.ctx
			return m, func() tea.Msg { return refreshDoneMsg{err: fn(ctx)} }
		}

	case spinner.TickMsg:
		if !m.MintDisabled() && !m.topping {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mintDoneMsg:
		m.minting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}

	case faucetDoneMsg:
		m.topping = false
		if msg.err != nil {
			m.errMsg = "faucet: " + msg.err.Error()
		} else {
			m.notices = appendNotice(m.notices, notify.Event{Kind: notify.KindSuccess, Message: "Faucet top-up confirmed"})
		}

	case refreshDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
		}

	case NoticeMsg:
		m.notices = appendNotice(m.notices, notify.Event(msg))

	case StateMsg:
	}

	return m, nil
}

func appendNotice(list []notify.Event, e notify.Event) []notify.Event {
	list = append(list, e)
	if len(list) > maxNotices {
		list = list[len(list)-maxNotices:]
	}
	return list
}

func (m PanelModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	view := m.Panel.View()

	// ── Heading ───────────────────────────────────────────────────────────
	sb.WriteString(StyleTitle.Render(Heading(view)) + "\n")

	if m.Panel.Wallet() == nil {
		sb.WriteString(StyleMeta.Render("  No wallet connected. Run `w3mint wallet use <name>`.") + "\n")
	} else if !m.Panel.Ready() {
		if err := m.Panel.LastError(); err != nil {
			sb.WriteString(Err(err.Error()) + "\n")
		} else {
			sb.WriteString(StyleMeta.Render("  "+m.spinner.View()+" loading token…") + "\n")
		}
	}

	// ── Mint button ───────────────────────────────────────────────────────
	sb.WriteString("\n")
	if m.MintDisabled() {
		sb.WriteString(StyleButtonDisabled.Render("Mint") + "  " + m.spinner.View() + StyleMeta.Render(" minting…"))
	} else {
		sb.WriteString(StyleButton.Render("Mint"))
	}
	sb.WriteString("\n\n")

	// ── Balance ───────────────────────────────────────────────────────────
	sb.WriteString(StyleMeta.Render("Token Balance: ") + StyleValue.Render(view.FormattedBalance()) + "\n")

	// ── Info ──────────────────────────────────────────────────────────────
	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("Each token is one asset of a multi-asset contract, identified by") + "\n")
	sb.WriteString(StyleMeta.Render("the contract address and a sub id. Read more: ") + Addr(DocMultiToken) + "\n")
	sb.WriteString(StyleMeta.Render("Contracts are covered in depth at ") + Addr(DocContracts) + "\n")

	// ── Faucet ────────────────────────────────────────────────────────────
	if m.faucetEnabled() {
		sb.WriteString("\n")
		label := "Local faucet"
		if m.FaucetLabel != "" {
			label += ": " + m.FaucetLabel
		}
		if m.topping {
			sb.WriteString(StyleWarning.Render(label+"  "+m.spinner.View()+" topping up…") + "\n")
		} else {
			sb.WriteString(StyleSuccess.Render(label) + "\n")
		}
	}

	// ── Notifications ─────────────────────────────────────────────────────
	if len(m.notices) > 0 || m.errMsg != "" {
		sb.WriteString("\n")
	}
	for _, n := range m.notices {
		sb.WriteString(notify.Line(n) + "\n")
	}
	if m.errMsg != "" && !containsNotice(m.notices, m.errMsg) {
		sb.WriteString(Err(m.errMsg) + "\n")
	}

	sb.WriteString("\n" + m.controls() + "\n")
	return sb.String()
}

func containsNotice(list []notify.Event, msg string) bool {
	for _, n := range list {
		if n.Message == msg {
			return true
		}
	}
	return false
}

// Heading renders "Token <name> $<symbol>" with blanks for unread fields.
func Heading(v panel.TokenView) string {
	name, symbol := "", ""
	if v.Name != nil {
		name = *v.Name
	}
	if v.Symbol != nil {
		symbol = *v.Symbol
	}
	return fmt.Sprintf("Token %s $%s", name, symbol)
}

func (m PanelModel) controls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	if m.MintDisabled() {
		sb.WriteString(StyleMeta.Render("[ m ] mint"))
	} else {
		sb.WriteString(StyleInfo.Render("[ m ]") + StyleMeta.Render(" mint"))
	}
	if m.faucetEnabled() {
		sb.WriteString(sep + StyleSuccess.Render("[ f ]") + StyleMeta.Render(" faucet"))
	}
	if m.Refresh != nil {
		sb.WriteString(sep + StyleWarning.Render("[ r ]") + StyleMeta.Render(" refresh"))
	}
	sb.WriteString(sep + StyleMeta.Render("[ q ] quit"))
	return sb.String()
}
