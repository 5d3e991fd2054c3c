package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultRPC      = "http://127.0.0.1:8545"
	defaultQuantity = "5"
	defaultLevel    = "info"

	configFile = "config.json"
	envFile    = ".env"
	envPrefix  = "W3MINT"
)

// ErrNoContract is returned by Validate when no token contract is configured.
var ErrNoContract = errors.New("no token contract configured")

// Keys lists every settable key, in display order.
var Keys = []string{
	"contract_address", "deployments_url", "rpc_url", "rpc_strategy", "chain_id", "local",
	"mint_quantity", "mint_raw", "default_wallet",
	"faucet_key_ref", "faucet_amount_wei",
	"slack_webhook_url", "log_file", "log_level",
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3mint.
// A .env file in dir and in the working directory is loaded first, so
// W3MINT_* variables from either override the file.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3mint")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	for _, p := range []string{envFile, filepath.Join(dir, envFile)} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
	}

	path := filepath.Join(dir, configFile)
	file, err := read(path, false)
	if err != nil {
		return nil, err
	}
	cfg, err := read(path, true)
	if err != nil {
		return nil, err
	}
	file.configDir = dir
	cfg.configDir = dir
	cfg.file = file
	return cfg, nil
}

// read decodes the config file at path over the defaults. With env,
// W3MINT_* variables take precedence over the file.
func read(path string, env bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if env {
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Save writes the config file. Only values changed through Set are
// written; env, .env and flag overrides stay out of the file.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	out := c
	if c.file != nil {
		out = c.file
	}
	return saveJSON(filepath.Join(c.configDir, configFile), out)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Validate checks the values the mint panel cannot run without.
func (c *Config) Validate() error {
	if c.ContractAddress == "" {
		return ErrNoContract
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", c.ContractAddress)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is empty")
	}
	return nil
}

// Get returns the string form of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "contract_address":
		return c.ContractAddress, nil
	case "deployments_url":
		return c.DeploymentsURL, nil
	case "rpc_url":
		return c.RPCURL, nil
	case "rpc_strategy":
		return c.RPCStrategy, nil
	case "chain_id":
		return strconv.FormatInt(c.ChainID, 10), nil
	case "local":
		return strconv.FormatBool(c.Local), nil
	case "mint_quantity":
		return c.MintQuantity, nil
	case "mint_raw":
		return c.MintRaw, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "faucet_key_ref":
		return c.FaucetKeyRef, nil
	case "faucet_amount_wei":
		return c.FaucetAmountWei, nil
	case "slack_webhook_url":
		return c.SlackWebhookURL, nil
	case "log_file":
		return c.LogFile, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set assigns a config key from its string form, both to the effective
// config and to the values Save persists.
func (c *Config) Set(key, value string) error {
	if err := c.set(key, value); err != nil {
		return err
	}
	if c.file != nil {
		return c.file.set(key, value)
	}
	return nil
}

func (c *Config) set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "contract_address":
		if value != "" && !common.IsHexAddress(value) {
			return fmt.Errorf("invalid contract address %q", value)
		}
		c.ContractAddress = value
	case "deployments_url":
		c.DeploymentsURL = value
	case "rpc_url":
		c.RPCURL = value
	case "rpc_strategy":
		if value != "fastest" && value != "failover" {
			return fmt.Errorf("invalid rpc strategy %q (want fastest or failover)", value)
		}
		c.RPCStrategy = value
	case "chain_id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chain id %q: %w", value, err)
		}
		c.ChainID = id
	case "local":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", value, err)
		}
		c.Local = b
	case "mint_quantity":
		c.MintQuantity = value
	case "mint_raw":
		c.MintRaw = value
	case "default_wallet":
		c.DefaultWallet = value
	case "faucet_key_ref":
		c.FaucetKeyRef = value
	case "faucet_amount_wei":
		c.FaucetAmountWei = value
	case "slack_webhook_url":
		c.SlackWebhookURL = value
	case "log_file":
		c.LogFile = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("contract_address", "")
	v.SetDefault("deployments_url", "")
	v.SetDefault("rpc_url", defaultRPC)
	v.SetDefault("rpc_strategy", "fastest")
	v.SetDefault("chain_id", 0)
	v.SetDefault("local", false)
	v.SetDefault("mint_quantity", defaultQuantity)
	v.SetDefault("mint_raw", "")
	v.SetDefault("default_wallet", "")
	v.SetDefault("faucet_key_ref", "")
	v.SetDefault("faucet_amount_wei", DefaultFaucetAmountWei)
	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", defaultLevel)
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
