package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"codingwithyou/internal/logger"
)

// KeyringStore keeps secrets in the operating system keychain
// (Keychain on macOS, Credential Manager on Windows, Secret Service on Linux).
// When the keychain cannot be reached, reads and writes go to fallback instead.
type KeyringStore struct {
	service  string
	fallback Store
}

// NewKeyringStore creates a KeyringStore using service as the keychain service name.
// fallback may be nil, in which case keychain failures are returned as errors.
func NewKeyringStore(service string, fallback Store) *KeyringStore {
	return &KeyringStore{service: service, fallback: fallback}
}

// Get returns the value stored under key, or ErrNotFound.
// A value missing from the keychain is looked up in the fallback, where it
// lands when it was saved while the keychain was unavailable.
func (s *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, keyring.ErrNotFound):
		if s.fallback == nil {
			return "", ErrNotFound
		}
		return s.fallback.Get(key)
	default:
		return s.fallbackOr(err, "get", func(fb Store) (string, error) { return fb.Get(key) })
	}
}

// Set stores value under key. Empty values are rejected with ErrEmptyValue.
func (s *KeyringStore) Set(key, value string) error {
	if value == "" {
		return ErrEmptyValue
	}

	if err := keyring.Set(s.service, key, value); err != nil {
		_, err = s.fallbackOr(err, "set", func(fb Store) (string, error) { return "", fb.Set(key, value) })
		return err
	}

	logger.Debug("Secret stored in keyring", "service", s.service, "key", key)
	if s.fallback != nil {
		if err := s.fallback.Delete(key); err != nil {
			logger.Warn("Failed to remove secret from fallback store", "key", key, "error", err)
		}
	}
	return nil
}

// Delete removes key from the keychain and the fallback. Deleting a missing key is not an error.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		_, err = s.fallbackOr(err, "delete", func(fb Store) (string, error) { return "", fb.Delete(key) })
		return err
	}

	if s.fallback != nil {
		return s.fallback.Delete(key)
	}
	return nil
}

func (s *KeyringStore) fallbackOr(err error, op string, fn func(Store) (string, error)) (string, error) {
	if s.fallback == nil {
		return "", fmt.Errorf("keyring %s failed: %w", op, err)
	}
	logger.Debug("Keyring unavailable, using fallback store", "operation", op, "error", err)
	return fn(s.fallback)
}
