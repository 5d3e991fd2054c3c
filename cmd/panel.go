package cmd

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/panel"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive mint panel",
	Long: `Open the token mint panel.

Keys:
  m   mint (disabled while a mint is in flight)
  f   top up from the local faucet (only with --local)
  r   re-read the session
  q   quit

Logs go to --log-file (or log_file) so the terminal stays clean.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var prog atomic.Pointer[tea.Program]
		send := func(msg tea.Msg) {
			if p := prog.Load(); p != nil {
				p.Send(msg)
			}
		}

		s, err := newSession(ctx,
			notify.Func(func(e notify.Event) { send(ui.NoticeMsg(e)) }),
			panel.WithOnChange(func() { send(ui.StateMsg{}) }),
		)
		if err != nil {
			return err
		}
		defer s.close()

		m := ui.NewPanelModel(ctx, s.panel)
		m.Refresh = s.provider.Refetch
		if cfg.Local {
			m.Faucet = s.topUp
			if wei, ok := new(big.Int).SetString(cfg.FaucetAmountWei, 10); ok {
				m.FaucetLabel = chain.FormatUnits(wei, 18) + " native"
			}
		}

		p := tea.NewProgram(m, tea.WithContext(ctx))
		prog.Store(p)
		_, err = p.Run()
		prog.Store(nil)
		return err
	},
}
