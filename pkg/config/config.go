// Package config manages the CLI configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the persisted configuration.
type Config struct {
	Version  string          `json:"version"`
	Defaults DefaultSettings `json:"defaults"`
	Security SecurityConfig  `json:"security"`
	UI       UIConfig        `json:"ui"`
	Storage  StorageConfig   `json:"storage"`
}

// DefaultSettings carries defaults for split and combine operations.
type DefaultSettings struct {
	Field     string `json:"field"`     // "bn254" or "prime"
	Prime     string `json:"prime"`     // decimal, when Field is "prime"
	Threshold int    `json:"threshold"` // for plain t-of-n byte splits
	Shares    int    `json:"shares"`
}

// SecurityConfig carries the security policy.
type SecurityConfig struct {
	RequirePassphrase   bool `json:"require_passphrase"`
	MinPassphraseLength int  `json:"min_passphrase_length"`
	WipeMemory          bool `json:"wipe_memory"`
}

// UIConfig carries output preferences.
type UIConfig struct {
	UseColor  bool   `json:"use_color"`
	Verbosity string `json:"verbosity"` // quiet, normal, verbose
}

// StorageConfig carries share store settings.
type StorageConfig struct {
	StorePath      string `json:"store_path"`
	EncryptStore   bool   `json:"encrypt_store"`
	KeyPath        string `json:"key_path"`
	AutoSaveSplits bool   `json:"auto_save_splits"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			Field:     "bn254",
			Prime:     "",
			Threshold: 2,
			Shares:    3,
		},
		Security: SecurityConfig{
			RequirePassphrase:   false,
			MinPassphraseLength: 8,
			WipeMemory:          true,
		},
		UI: UIConfig{
			UseColor:  true,
			Verbosity: "normal",
		},
		Storage: StorageConfig{
			StorePath:      "~/.thresher/shares",
			EncryptStore:   false,
			KeyPath:        "~/.thresher/signer.key",
			AutoSaveSplits: false,
		},
	}
}

// Manager loads and saves the configuration file.
type Manager struct {
	config *Config
	path   string
}

// NewManager resolves the config path, loading the file or writing the
// defaults if none exists.
func NewManager() (*Manager, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}

	if err := m.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		m.config = Default()
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("config: failed to save defaults: %w", err)
		}
	}
	return m, nil
}

// Load reads the configuration from disk.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", m.path, err)
	}
	m.config = cfg
	return nil
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("config: failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("config: failed to write config: %w", err)
	}
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config { return m.config }

// Set replaces the current configuration.
func (m *Manager) Set(cfg *Config) { m.config = cfg }

// Path returns the resolved configuration file path.
func (m *Manager) Path() string { return m.path }

// ExpandPath resolves a leading ~ against the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func configPath() (string, error) {
	if custom := os.Getenv("THRESHER_CONFIG"); custom != "" {
		return custom, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thresher", "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "thresher", "config.json"), nil
}
