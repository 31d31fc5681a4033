// Package config provides configuration management for the sharing CLI
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
)

// Config represents the main configuration structure
type Config struct {
	Version  string          `json:"version"`
	Defaults DefaultSettings `json:"defaults"`
	Security SecurityConfig  `json:"security"`
	Storage  StorageConfig   `json:"storage"`
}

// DefaultSettings contains default values for split
type DefaultSettings struct {
	Scheme    string `json:"scheme"`    // Default: threshold
	Threshold int    `json:"threshold"` // Default: 2
	Shares    int    `json:"shares"`    // Default: 3
	Operator  string `json:"operator"`  // Default: xor (xor scheme only)
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	RequirePassphrase   bool `json:"require_passphrase"`    // Force encrypted share files
	MinPassphraseLength int  `json:"min_passphrase_length"` // Minimum passphrase length
	WipeMemory          bool `json:"wipe_memory"`           // Zero secrets after use
}

// StorageConfig contains share file settings
type StorageConfig struct {
	DefaultPath     string `json:"default_path"`     // Directory for share files
	FilePermissions string `json:"file_permissions"` // Octal file mode, e.g. "0600"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			Scheme:    string(secretsharing.SchemeThreshold),
			Threshold: 2,
			Shares:    3,
			Operator:  "xor",
		},
		Security: SecurityConfig{
			RequirePassphrase:   false,
			MinPassphraseLength: 8,
			WipeMemory:          true,
		},
		Storage: StorageConfig{
			DefaultPath:     "",
			FilePermissions: "0600",
		},
	}
}

// Load reads the configuration at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks values that cannot be deferred to the sharing schemes.
func (c *Config) Validate() error {
	if _, err := c.FileMode(); err != nil {
		return err
	}
	if c.Security.MinPassphraseLength < 0 {
		return fmt.Errorf("min_passphrase_length cannot be negative")
	}
	return nil
}

// FileMode parses Storage.FilePermissions
func (c *Config) FileMode() (os.FileMode, error) {
	if c.Storage.FilePermissions == "" {
		return 0600, nil
	}
	mode, err := strconv.ParseUint(c.Storage.FilePermissions, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file_permissions %q: %w", c.Storage.FilePermissions, err)
	}
	if mode > 0777 {
		return 0, fmt.Errorf("invalid file_permissions %q: not a permission mode", c.Storage.FilePermissions)
	}
	return os.FileMode(mode), nil
}

// SplitConfig returns the default split configuration
func (c *Config) SplitConfig() secretsharing.Config {
	return secretsharing.Config{
		Scheme:    secretsharing.SchemeType(c.Defaults.Scheme),
		Threshold: c.Defaults.Threshold,
		Parts:     c.Defaults.Shares,
		Operator:  c.Defaults.Operator,
	}
}

// ValidatePassphrase applies the security policy to a passphrase used for
// share files.
func (c *Config) ValidatePassphrase(passphrase []byte) error {
	if len(passphrase) == 0 {
		if c.Security.RequirePassphrase {
			return fmt.Errorf("passphrase is required by security policy")
		}
		return nil
	}

	if len(passphrase) < c.Security.MinPassphraseLength {
		return fmt.Errorf("passphrase must be at least %d characters", c.Security.MinPassphraseLength)
	}

	return nil
}

// DefaultPath returns the configuration file path
func DefaultPath() (string, error) {
	// Check for custom config path
	if customPath := os.Getenv("SHARING_CONFIG"); customPath != "" {
		return customPath, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sharing", "config.json"), nil
	}

	// Default to ~/.config/sharing/config.json
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "sharing", "config.json"), nil
}
