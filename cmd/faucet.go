package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/faucet"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Top up your wallet from the local dev faucet",
	Long: `Send faucet_amount_wei of native coin from the dev account stored under
faucet_key_ref to the session wallet. Only available on a local network
(--local or local=true).

Example:
  w3mint wallet import funder --key 0xac09...   # a prefunded dev account
  w3mint config set faucet_key_ref w3mint.funder
  w3mint faucet --local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Local {
			return faucet.ErrNotLocal
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()

		out := cmd.OutOrStdout()
		s, err := newSession(ctx, notify.NewTerminal(out))
		if err != nil {
			return err
		}
		defer s.close()

		f, err := s.newFaucet()
		if err != nil {
			return err
		}
		w := s.provider.Current()

		spin := ui.NewSpinner(out, "Topping up "+ui.TruncateAddr(w.Address().Hex())+"…")
		spin.Start()
		receipt, err := f.TopUp(ctx, w.Address())
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Sent %s native to %s", chain.FormatUnits(f.Amount(), 18), ui.Addr(w.Address().Hex()))))
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("tx %s  block #%d", receipt.Hash.Hex(), receipt.BlockNumber)))
		if bal := s.provider.NativeBalance(); bal != nil {
			fmt.Fprintln(out, ui.Meta("Native balance: ")+ui.Val(chain.FormatUnits(bal, 18)))
		}
		return nil
	},
}
