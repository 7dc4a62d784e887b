package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steviee/nidhogg/pkg/data"
)

// ErrNoSession is returned by LoadSession when no session has been stored.
var ErrNoSession = errors.New("no stored session, run 'nidhogg auth login' first")

// StoredSession is the on-disk form of an authenticated session.
type StoredSession struct {
	AccessToken string    `yaml:"access_token"`
	ClientToken string    `yaml:"client_token"`
	ProfileID   string    `yaml:"profile_id,omitempty"`
	Alias       string    `yaml:"alias,omitempty"`
	SavedAt     time.Time `yaml:"saved_at"`
}

// Session converts the stored form back into a data.Session.
func (s *StoredSession) Session() data.Session {
	return data.Session{
		AccessToken: s.AccessToken,
		ClientToken: s.ClientToken,
		ProfileID:   s.ProfileID,
		Alias:       s.Alias,
	}
}

// SaveSession writes session to path with owner-only permissions.
func SaveSession(path string, session data.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	stored := StoredSession{
		AccessToken: session.AccessToken,
		ClientToken: session.ClientToken,
		ProfileID:   session.ProfileID,
		Alias:       session.Alias,
		SavedAt:     time.Now().UTC(),
	}

	out, err := yaml.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := AtomicWrite(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// LoadSession reads the session stored at path.
// It returns ErrNoSession if the file does not exist.
func LoadSession(path string) (*StoredSession, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var stored StoredSession
	if err := yaml.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if stored.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &stored, nil
}

// ClearSession removes the stored session. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
