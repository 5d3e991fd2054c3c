package cmd

import (
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/faucet"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	devKey   = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	tokenHex = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// run executes the root command with fresh per-run flag state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	walletFlag, logFile, metricsAddr, localFlag, verbose = "", "", "", false, false
	mintYes, mintQuantity = false, ""
	syncContract, syncNetwork, syncWatch = "token", "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupConfig(t *testing.T, rpcURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(wallet.KeyEnvVar, devKey)
	t.Setenv("W3MINT_CONFIG_DIR", "")

	_, err := run(t, "--config", dir, "config", "set", "contract_address", tokenHex)
	require.NoError(t, err)
	_, err = run(t, "--config", dir, "config", "set", "rpc_url", rpcURL)
	require.NoError(t, err)
	return dir
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "--config", dir, "config", "set", "mint_quantity", "7")
	require.NoError(t, err)

	out, err := run(t, "--config", dir, "config", "get", "mint_quantity")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.MintQuantity)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", dir, "config", "set", "contract_address", "nope")
	assert.Error(t, err)
	_, err = run(t, "--config", dir, "config", "set", "no_such_key", "1")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--config", dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"rpc_url": "http://127.0.0.1:8545"`)
	assert.Contains(t, out, config.ErrNoContract.Error())
}

func TestConfigSyncFromManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "deployments.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"contracts":{"token":{"local":{"address":"`+tokenHex+`"}}}}`), 0o600))

	out, err := run(t, "--config", dir, "--local", "config", "sync", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "contract_address set to")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, tokenHex, cfg.ContractAddress)
	assert.Equal(t, manifest, cfg.DeploymentsURL)
	assert.False(t, cfg.Local, "--local applies to one run only")

	_, err = run(t, "--config", dir, "config", "sync", "--network", "8453")
	assert.ErrorContains(t, err, `no deployment on network "8453"`)
}

func TestInfoWithoutContract(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", dir, "info")
	assert.ErrorIs(t, err, config.ErrNoContract)
}

func TestInfoReadsToken(t *testing.T) {
	node, srv := newDevNode(t, common.HexToAddress(tokenHex))
	node.balances[contract.Bits(common.HexToAddress(devAddr))] = big.NewInt(2_500_000)
	dir := setupConfig(t, srv.URL)

	out, err := run(t, "--config", dir, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Token Dhai Token $DHAI")
	assert.Contains(t, out, "2.500000")
	assert.Contains(t, out, "Total supply")
	assert.Contains(t, out, devAddr)
	assert.Contains(t, out, contract.NewAssetID(common.HexToAddress(tokenHex), contract.ZeroBytes32).Hex())
}

func TestMintEndToEnd(t *testing.T) {
	node, srv := newDevNode(t, common.HexToAddress(tokenHex))
	dir := setupConfig(t, srv.URL)

	out, err := run(t, "--config", dir, "mint", "--yes")
	require.NoError(t, err)

	require.Len(t, node.mints, 1)
	assert.Equal(t, big.NewInt(5_000_000), node.mints[0])
	assert.Equal(t, big.NewInt(5_000_000), node.balance(contract.Bits(common.HexToAddress(devAddr))))
	assert.Contains(t, out, "Transaction submitted")
	assert.Contains(t, out, "Minted 5 $DHAI")
	assert.Contains(t, out, "5.000000")
}

func TestMintSkipsDeadRPC(t *testing.T) {
	node, srv := newDevNode(t, common.HexToAddress(tokenHex))
	dir := setupConfig(t, "http://127.0.0.1:1,"+srv.URL)

	out, err := run(t, "--config", dir, "mint", "--yes")
	require.NoError(t, err)
	require.Len(t, node.mints, 1)
	assert.Contains(t, out, "Minted 5 $DHAI")
}

func TestMintQuantityFlag(t *testing.T) {
	node, srv := newDevNode(t, common.HexToAddress(tokenHex))
	dir := setupConfig(t, srv.URL)

	out, err := run(t, "--config", dir, "mint", "--yes", "--quantity", "1.5")
	require.NoError(t, err)
	require.Len(t, node.mints, 1)
	assert.Equal(t, big.NewInt(1_500_000), node.mints[0])
	assert.Contains(t, out, "Minted 1.5 $DHAI")
}

func TestMintRevertReported(t *testing.T) {
	node, srv := newDevNode(t, common.HexToAddress(tokenHex))
	node.revert = true
	dir := setupConfig(t, srv.URL)

	out, err := run(t, "--config", dir, "mint", "--yes")
	require.Error(t, err)
	assert.Contains(t, out, "reverted")
}

func TestMintChainIDMismatch(t *testing.T) {
	_, srv := newDevNode(t, common.HexToAddress(tokenHex))
	dir := setupConfig(t, srv.URL)
	_, err := run(t, "--config", dir, "config", "set", "chain_id", "1")
	require.NoError(t, err)

	_, err = run(t, "--config", dir, "mint", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config expects 1")
}

func TestFaucetRequiresLocal(t *testing.T) {
	_, srv := newDevNode(t, common.HexToAddress(tokenHex))
	dir := setupConfig(t, srv.URL)

	_, err := run(t, "--config", dir, "faucet")
	assert.ErrorIs(t, err, faucet.ErrNotLocal)
}

func TestWalletListEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--config", dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallets yet")
}

func TestWalletUseUnknown(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", dir, "wallet", "use", "ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestLogFileFlagWritesJSON(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "w3mint.log")
	_, err := run(t, "--config", dir, "--log-file", logPath, "config", "get", "log_level")
	require.NoError(t, err)
	assert.FileExists(t, logPath)
}
