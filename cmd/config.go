package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/sync"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(out, ui.Warn(err.Error()))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one configuration value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set and persist a configuration value",
	Long:      "Set and persist a configuration value.\n\nKeys: " + fmt.Sprint(config.Keys),
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

var (
	syncContract string
	syncNetwork  string
	syncWatch    time.Duration
)

var configSyncCmd = &cobra.Command{
	Use:   "sync [path|url]",
	Short: "Set contract_address from a deployments manifest",
	Long: `Read a deployments.json manifest and store the token's address for the
current network as contract_address. The network key is "local" with --local,
otherwise the configured chain_id.

Manifest format:
  {"contracts": {"token": {"local": {"address": "0x..."}, "11155111": {"address": "0x..."}}}}

Example:
  w3mint config sync ./deployments.json --local
  w3mint config sync https://example.com/deployments.json --watch 1m`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source string
		if len(args) == 1 {
			source = args[0]
		}
		s := sync.New(cfg, slog.Default())
		if syncWatch > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Syncing every %s, Ctrl+C to stop", syncWatch)))
			return s.Watch(cmd.Context(), source, syncContract, syncNetwork, syncWatch)
		}
		addr, err := s.Run(cmd.Context(), source, syncContract, syncNetwork)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("contract_address set to "+ui.Addr(addr)))
		return nil
	},
}

func init() {
	configSyncCmd.Flags().StringVar(&syncContract, "contract", sync.DefaultContract, "manifest contract name")
	configSyncCmd.Flags().StringVar(&syncNetwork, "network", "", "manifest network key (default: local or chain_id)")
	configSyncCmd.Flags().DurationVar(&syncWatch, "watch", 0, "re-sync on this interval until interrupted")
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configSyncCmd)
}
