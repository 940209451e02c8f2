package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "cosense"

// KeyringStore keeps session cookies in the system keyring, one entry per
// project.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(project string) (string, error) {
	val, err := keyring.Get(s.service(), project)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(project, sid string) error {
	return keyring.Set(s.service(), project, sid)
}

func (s *KeyringStore) Delete(project string) error {
	err := keyring.Delete(s.service(), project)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// KeyringAvailable reports whether a system keyring backend appears supported.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_availability_")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	return !errors.Is(err, errors.ErrUnsupported)
}
