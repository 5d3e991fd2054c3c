package config

// Config holds all w3mint configuration.
type Config struct {
	ContractAddress string `json:"contract_address"  mapstructure:"contract_address"`
	DeploymentsURL  string `json:"deployments_url"   mapstructure:"deployments_url"` // manifest read by `config sync`
	RPCURL          string `json:"rpc_url"           mapstructure:"rpc_url"`         // comma-separated for several endpoints
	RPCStrategy     string `json:"rpc_strategy"      mapstructure:"rpc_strategy"`
	ChainID         int64  `json:"chain_id"          mapstructure:"chain_id"` // 0 = ask the node
	Local           bool   `json:"local"             mapstructure:"local"`    // dev network; enables the faucet
	MintQuantity    string `json:"mint_quantity"     mapstructure:"mint_quantity"`
	MintRaw         string `json:"mint_raw"          mapstructure:"mint_raw"` // raw units; overrides mint_quantity when set
	DefaultWallet   string `json:"default_wallet"    mapstructure:"default_wallet"`
	FaucetKeyRef    string `json:"faucet_key_ref"    mapstructure:"faucet_key_ref"`
	FaucetAmountWei string `json:"faucet_amount_wei" mapstructure:"faucet_amount_wei"`
	SlackWebhookURL string `json:"slack_webhook_url" mapstructure:"slack_webhook_url"`
	LogFile         string `json:"log_file"          mapstructure:"log_file"`
	LogLevel        string `json:"log_level"         mapstructure:"log_level"`

	// internal: config dir path used for Save()
	configDir string
	// internal: the config file's own values, without env or flag
	// overrides. Set writes through to it and Save persists it.
	file *Config
}
