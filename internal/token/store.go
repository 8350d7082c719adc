// ABOUTME: Durable session storage in the XDG config directory
// ABOUTME: Persists access token, refresh token, and department across restarts

package token

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store persists session credentials as JSON in a config directory
type Store struct {
	configDir string
}

type sessionData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Department   string `json:"department"`
}

// NewStore creates a store rooted at the given config directory
func NewStore(configDir string) *Store {
	return &Store{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skumap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "skumap")
}

// sessionFile returns the path to the persisted session JSON
func (s *Store) sessionFile() string {
	return filepath.Join(s.configDir, "session.json")
}

// Load reads the persisted session. A missing or corrupt file yields an
// empty session rather than an error; the user simply logs in again.
func (s *Store) Load() (accessToken, refreshToken, department string, err error) {
	data, err := os.ReadFile(s.sessionFile())
	if os.IsNotExist(err) {
		return "", "", "", nil
	}
	if err != nil {
		return "", "", "", err
	}

	var sess sessionData
	if err := json.Unmarshal(data, &sess); err != nil {
		return "", "", "", nil
	}

	return sess.AccessToken, sess.RefreshToken, sess.Department, nil
}

// Save writes the session to disk. Credentials get owner-only permissions.
func (s *Store) Save(accessToken, refreshToken, department string) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sessionData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Department:   department,
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.sessionFile(), data, 0600)
}

// Clear removes the persisted session. Idempotent.
func (s *Store) Clear() error {
	err := os.Remove(s.sessionFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
