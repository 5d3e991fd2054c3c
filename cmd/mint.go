package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/notify"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var (
	mintYes      bool
	mintQuantity string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint tokens to your wallet once",
	Long: `Connect the wallet, read the token, mint the configured quantity to the
wallet itself, wait for finality and print the new balance.

Examples:
  w3mint mint
  w3mint mint --quantity 2.5 --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mintQuantity != "" {
			cfg.MintQuantity = mintQuantity
			cfg.MintRaw = ""
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()

		out := cmd.OutOrStdout()
		s, err := newSession(ctx, notify.NewTerminal(out))
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.initErr(); err != nil {
			return err
		}

		view := s.panel.View()
		fmt.Fprintln(out, ui.StyleTitle.Render(ui.Heading(view)))
		fmt.Fprintln(out, ui.Meta("Balance: ")+ui.Val(view.FormattedBalance()))

		qty := cfg.MintQuantity
		if cfg.MintRaw != "" {
			qty = cfg.MintRaw + " base units of"
		}
		if !mintYes && !ui.Confirm(os.Stdin, out, fmt.Sprintf("Mint %s $%s to %s?", qty, *view.Symbol, s.provider.Current().Address().Hex())) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}

		if err := s.panel.Mint(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Meta("Balance: ")+ui.Val(s.panel.View().FormattedBalance()))
		return nil
	},
}

func init() {
	mintCmd.Flags().BoolVarP(&mintYes, "yes", "y", false, "skip the confirmation prompt")
	mintCmd.Flags().StringVarP(&mintQuantity, "quantity", "q", "", "whole-token amount to mint (default: config mint_quantity)")
}
