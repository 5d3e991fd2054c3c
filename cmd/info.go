package cmd

import (
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the token and your balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s, err := newSession(cmd.Context(), notify.NewTerminal(out))
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.initErr(); err != nil {
			return err
		}

		view := s.panel.View()
		w := s.provider.Current()
		pairs := [][2]string{
			{"Name", *view.Name},
			{"Symbol", "$" + *view.Symbol},
			{"Decimals", strconv.Itoa(int(*view.Decimals))},
			{"Contract", cfg.ContractAddress},
			{"Asset ID", s.panel.AssetID().Hex()},
			{"Wallet", fmt.Sprintf("%s (%s)", w.Name, w.Address().Hex())},
			{"Balance", view.FormattedBalance()},
		}
		token := contract.NewToken(s.panel.Options().ContractAddress, s.client, nil)
		if supply, err := token.TotalSupply(cmd.Context(), s.panel.AssetID()); err == nil {
			pairs = append(pairs, [2]string{"Total supply", chain.FormatUnits(supply, *view.Decimals)})
		}
		if err := s.provider.Refetch(cmd.Context()); err == nil {
			pairs = append(pairs, [2]string{"Native", chain.FormatUnits(s.provider.NativeBalance(), 18)})
		}
		if cfg.Local {
			pairs = append(pairs, [2]string{"Network", "local (faucet enabled)"})
		}
		fmt.Fprintln(out, ui.KeyValueBlock(ui.Heading(view), pairs))
		return nil
	},
}
