// Package sync points w3mint at a deployed token by reading a deployments
// manifest written by the contract's deploy tooling.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultContract is the manifest entry the panel mints from.
const DefaultContract = "token"

// ErrNoSource is returned when neither an argument nor deployments_url names a manifest.
var ErrNoSource = errors.New("no deployments manifest: pass a path or URL, or set deployments_url")

// Manifest is the structure of a deployments.json manifest:
// contract name → network → entry.
type Manifest struct {
	Contracts map[string]map[string]ManifestEntry `json:"contracts"`
}

// ManifestEntry is a single contract deployment entry.
type ManifestEntry struct {
	Address string `json:"address"`
}

// Syncer updates the configured contract address from a manifest.
type Syncer struct {
	cfg    *config.Config
	client *http.Client
	log    *slog.Logger
}

// New creates a new Syncer.
func New(cfg *config.Config, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		cfg:    cfg,
		client: &http.Client{Timeout: config.RPCTimeout},
		log:    log,
	}
}

// Network is the manifest key for the configured network: "local" on a dev
// network, otherwise the chain id.
func Network(cfg *config.Config) string {
	if cfg.Local {
		return "local"
	}
	if cfg.ChainID != 0 {
		return strconv.FormatInt(cfg.ChainID, 10)
	}
	return "default"
}

// Run loads the manifest from source (deployments_url when empty), looks up
// name on network and saves it as contract_address. It returns the address.
func (s *Syncer) Run(ctx context.Context, source, name, network string) (string, error) {
	if source == "" {
		source = s.cfg.DeploymentsURL
	}
	if source == "" {
		return "", ErrNoSource
	}
	if name == "" {
		name = DefaultContract
	}
	if network == "" {
		network = Network(s.cfg)
	}

	m, err := s.Fetch(ctx, source)
	if err != nil {
		return "", fmt.Errorf("fetching manifest: %w", err)
	}
	addr, err := m.Lookup(name, network)
	if err != nil {
		return "", err
	}

	if err := s.cfg.Set("contract_address", addr); err != nil {
		return "", err
	}
	if err := s.cfg.Set("deployments_url", source); err != nil {
		return "", err
	}
	if err := s.cfg.Save(); err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	s.log.Info("contract synced", "contract", name, "network", network, "address", addr, "source", source)
	return addr, nil
}

// Fetch reads a manifest from an http(s) URL or a local file.
func (s *Syncer) Fetch(ctx context.Context, source string) (*Manifest, error) {
	var body []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, err
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Lookup returns the checksummed address of name on network.
func (m *Manifest) Lookup(name, network string) (string, error) {
	networks, ok := m.Contracts[name]
	if !ok {
		return "", fmt.Errorf("contract %q not in manifest", name)
	}
	entry, ok := networks[network]
	if !ok {
		return "", fmt.Errorf("contract %q has no deployment on network %q", name, network)
	}
	if !common.IsHexAddress(entry.Address) {
		return "", fmt.Errorf("contract %q on %q: invalid address %q", name, network, entry.Address)
	}
	return common.HexToAddress(entry.Address).Hex(), nil
}

// Watch re-runs the sync on a ticker until ctx is cancelled.
func (s *Syncer) Watch(ctx context.Context, source, name, network string, interval time.Duration) error {
	if _, err := s.Run(ctx, source, name, network); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Run(ctx, source, name, network); err != nil {
				s.log.Warn("contract sync failed", "error", err)
			}
		}
	}
}
