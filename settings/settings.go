// Package settings provides storage for lingokit user settings, primarily
// translation provider API keys.
//
// Settings live in the XDG data directory:
//
//	$XDG_DATA_HOME/lingokit/  (default: ~/.local/share/lingokit/)
//
// auth.json is a JSON object keyed by provider ID. File permissions are
// 0600 (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. LINGOKIT_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "lingokit"
	authFile    = "auth.json"
)

// Info is the stored credential for one provider.
type Info struct {
	// Type discriminator, currently always "api".
	Type string `json:"type"`
	// Key is the API key.
	Key string `json:"key,omitempty"`
}

// Store maps provider ID to credential.
type Store map[string]Info

// dataDir returns the lingokit data directory, honoring XDG_DATA_HOME.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// AuthPath returns the full path of auth.json.
func AuthPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, authFile), nil
}

// Load reads the credential store. A missing file is an empty store, not an
// error.
func Load() (Store, error) {
	path, err := AuthPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Save writes the credential store with 0600 permissions, creating the data
// directory if needed.
func Save(s Store) error {
	path, err := AuthPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SetAPIKey stores an API key for a provider.
func SetAPIKey(provider, key string) error {
	s, err := Load()
	if err != nil {
		return err
	}
	s[provider] = Info{Type: "api", Key: key}
	return Save(s)
}

// Remove deletes the stored credential for a provider.
func Remove(provider string) error {
	s, err := Load()
	if err != nil {
		return err
	}
	delete(s, provider)
	return Save(s)
}

// APIKey resolves the API key for a provider: flag value, then the
// LINGOKIT_API_KEY environment variable, then the store. Empty string when
// nothing is configured.
func APIKey(provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("LINGOKIT_API_KEY"); env != "" {
		return env
	}
	s, err := Load()
	if err != nil {
		return ""
	}
	return s[provider].Key
}
