package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Entry is the persisted metadata of a signing wallet. The key itself lives
// in the keystore under KeyRef.
type Entry struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	KeyRef    string `json:"key_ref"`
	CreatedAt string `json:"created_at"`
}

// Store is an interface for persisting wallet entries.
type Store interface {
	Load() ([]*Entry, error)
	Save([]*Entry) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	ks      KeystoreBackend
	wallets map[string]*Entry
	loaded  bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() ManagerOption {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) ManagerOption {
	return func(m *Manager) {
		m.store = s
	}
}

// NewManager creates a new wallet manager backed by ks.
func NewManager(ks KeystoreBackend, opts ...ManagerOption) *Manager {
	m := &Manager{
		wallets: make(map[string]*Entry),
		store:   &memStore{},
		ks:      ks,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Import derives the address from a hex private key, stores the key in the
// keystore and records the wallet.
func (m *Manager) Import(name, hexKey string) (*Entry, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, ErrWalletExists
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ref, err := m.ks.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	e := &Entry{
		Name:      name,
		Address:   crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.wallets[name] = e
	return e, m.persist()
}

// Get returns a wallet entry by name.
func (m *Manager) Get(name string) (*Entry, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	e, ok := m.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return e, nil
}

// Open unlocks the named wallet.
func (m *Manager) Open(name string, opts ...Option) (*Wallet, error) {
	e, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	hexKey, err := m.ks.Retrieve(e.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	return FromKey(e.Name, hexKey, opts...)
}

// Remove deletes a wallet and its key.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	e, ok := m.wallets[name]
	if !ok {
		return ErrWalletNotFound
	}
	if err := m.ks.Delete(e.KeyRef); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() ([]*Entry, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	out := make([]*Entry, 0, len(m.wallets))
	for _, e := range m.wallets {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	entries, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, e := range entries {
		m.wallets[e.Name] = e
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	entries := make([]*Entry, 0, len(m.wallets))
	for _, e := range m.wallets {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return m.store.Save(entries)
}

// --- in-memory store ---

type memStore struct {
	entries []*Entry
}

func (s *memStore) Load() ([]*Entry, error) {
	return s.entries, nil
}

func (s *memStore) Save(entries []*Entry) error {
	s.entries = entries
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *JSONStore) Save(entries []*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
