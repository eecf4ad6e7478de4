package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = appName
	keyringUser    = "session-token"
	credFileName   = ".credentials"
	tokenEnv       = "SHOPFLOOR_TOKEN"
)

// DataDir returns the path to the data directory for secure storage.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/shopfloor/
func DataDir() (string, error) {
	// Check XDG_DATA_HOME first
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	dataDir := filepath.Join(dataHome, appName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// TokenSource names where a session token was found.
type TokenSource string

const (
	SourceNone    TokenSource = ""
	SourceEnv     TokenSource = "environment"
	SourceKeyring TokenSource = "keyring"
	SourceFile    TokenSource = "credentials file"
)

// GetToken retrieves the session token from available sources.
// Priority: 1. SHOPFLOOR_TOKEN env var, 2. System keyring, 3. Credentials file
func GetToken() (string, error) {
	token, _, err := LookupToken()
	return token, err
}

// LookupToken is GetToken that also reports where the token came from.
func LookupToken() (string, TokenSource, error) {
	// 1. Check environment variable (highest priority, allows override)
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		return token, SourceEnv, nil
	}

	// 2. Try system keyring
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token), SourceKeyring, nil
	}

	// 3. Fall back to credentials file
	dataDir, err := DataDir()
	if err != nil {
		return "", SourceNone, err
	}

	data, err := os.ReadFile(filepath.Join(dataDir, credFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", SourceNone, nil
		}
		return "", SourceNone, fmt.Errorf("failed to read credentials file: %w", err)
	}
	token = strings.TrimSpace(string(data))
	if token == "" {
		return "", SourceNone, nil
	}
	return token, SourceFile, nil
}

// SaveToken stores the session token securely.
// Tries system keyring first, falls back to credentials file.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	// Try keyring first
	err := keyring.Set(keyringService, keyringUser, token)
	if err == nil {
		return nil
	}

	// Fall back to file storage
	dataDir, err := DataDir()
	if err != nil {
		return err
	}

	credPath := filepath.Join(dataDir, credFileName)
	if err := os.WriteFile(credPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ClearToken removes the stored session token from all locations.
func ClearToken() error {
	// Try to delete from keyring (ignore errors)
	_ = keyring.Delete(keyringService, keyringUser)

	// Delete credentials file if it exists
	dataDir, err := DataDir()
	if err != nil {
		return err
	}

	credPath := filepath.Join(dataDir, credFileName)
	if err := os.Remove(credPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}

	return nil
}

// HasToken returns true if a token is available from any source.
func HasToken() bool {
	token, _ := GetToken()
	return token != ""
}
