// Package keys stores the connect.sid session cookie per project.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// SessionStore provides access to per-project session cookies.
type SessionStore interface {
	Get(project string) (string, error)
	Put(project, sid string) error
	Delete(project string) error
}

var ErrSessionNotFound = errors.New("session not found")

// ConfigStore keeps session cookies in config-managed storage.
// Default is used for projects without their own entry.
type ConfigStore struct {
	SIDs    map[string]string
	Default string
}

func (s *ConfigStore) Get(project string) (string, error) {
	if s == nil {
		return "", ErrSessionNotFound
	}
	if sid := strings.TrimSpace(s.SIDs[project]); sid != "" {
		return sid, nil
	}
	if sid := strings.TrimSpace(s.Default); sid != "" {
		return sid, nil
	}
	return "", ErrSessionNotFound
}

func (s *ConfigStore) Put(project, sid string) error {
	if s.SIDs == nil {
		s.SIDs = map[string]string{}
	}
	s.SIDs[project] = sid
	return nil
}

func (s *ConfigStore) Delete(project string) error {
	if s == nil || s.SIDs == nil {
		return nil
	}
	delete(s.SIDs, project)
	return nil
}

// NoneStore never has a session.
type NoneStore struct{}

func (NoneStore) Get(string) (string, error) { return "", ErrSessionNotFound }
func (NoneStore) Put(string, string) error {
	return errors.New("session.provider is none; set it to keyring or config")
}
func (NoneStore) Delete(string) error { return nil }

// New returns the store for a session.provider value.
func New(provider string, cfg *ConfigStore) (SessionStore, error) {
	switch provider {
	case "", "none":
		return NoneStore{}, nil
	case "keyring":
		return &KeyringStore{}, nil
	case "config":
		if cfg == nil {
			cfg = &ConfigStore{}
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("unknown session provider %q", provider)
	}
}

// Lookup returns the session for project, or "" when none is stored.
func Lookup(s SessionStore, project string) (string, error) {
	sid, err := s.Get(project)
	if errors.Is(err, ErrSessionNotFound) {
		return "", nil
	}
	return sid, err
}
