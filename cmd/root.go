package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/logging"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3mint/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	localFlag   bool
	walletFlag  string
	logFile     string
	metricsAddr string

	closeLog = func() error { return nil }
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3mint",
	Short: "Mint multi-asset tokens from the terminal",
	Long: `w3mint reads a multi-asset token contract, shows the token's name, symbol
and your balance, and mints to your own wallet.

  w3mint panel            interactive panel
  w3mint mint             mint once and exit
  w3mint info             print the token and your balance

Configure once with:
  w3mint config set contract_address 0x...
  w3mint wallet import dev --key 0x...`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("local") {
			cfg.Local = localFlag
		}
		if logFile != "" {
			cfg.LogFile = logFile
		}
		return initLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// initLogging sends logs to stderr with --verbose, and always to the log
// file when one is configured. The panel keeps the terminal to itself.
func initLogging(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	var console io.Writer
	if verbose {
		level = slog.LevelDebug
		console = os.Stderr
	}
	if cmd.Name() == panelCmd.Name() {
		console = nil
	}
	_, closer, err := logging.Init(level, console, cfg.LogFile)
	if err != nil {
		return err
	}
	closeLog = closer
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

func init() {
	// W3MINT_CONFIG_DIR env var overrides the --config default.
	if envDir := os.Getenv("W3MINT_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3mint)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logs on stderr")
	rootCmd.PersistentFlags().BoolVar(&localFlag, "local", false, "treat the RPC as a local dev network (enables the faucet)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(
		panelCmd,
		mintCmd,
		infoCmd,
		walletCmd,
		faucetCmd,
		configCmd,
	)
}
