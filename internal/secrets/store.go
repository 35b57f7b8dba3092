// Package secrets provides the credential store used by codingwithyou.
// The store holds opaque string values under fixed namespaced keys.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"codingwithyou/internal/logger"
)

// APIKeyName is the namespaced identifier under which the API key is stored.
const APIKeyName = "codingwithyou.openaiApiKey"

// ErrNotFound is returned when a key is not present in the store.
var ErrNotFound = errors.New("secret not found")

// ErrEmptyValue is returned when storing an empty value.
var ErrEmptyValue = errors.New("secret value cannot be empty")

// Store is the interface for credential storage.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore keeps secrets in a single YAML file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// secretsFile is the on-disk layout of a FileStore.
type secretsFile struct {
	Secrets map[string]string `yaml:"secrets"`
}

// NewFileStore creates a FileStore backed by the file at path.
// The file and its parent directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the value stored under key, or ErrNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := data.Secrets[key]
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (s *FileStore) Set(key, value string) error {
	if value == "" {
		return ErrEmptyValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data.Secrets[key] = value

	logger.Debug("Storing secret", "key", key, "path", s.path)
	return s.save(data)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data.Secrets[key]; !ok {
		return nil
	}
	delete(data.Secrets, key)

	logger.Debug("Deleting secret", "key", key, "path", s.path)
	return s.save(data)
}

func (s *FileStore) load() (*secretsFile, error) {
	data := &secretsFile{Secrets: make(map[string]string)}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file %s: %w", s.path, err)
	}

	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", s.path, err)
	}
	if data.Secrets == nil {
		data.Secrets = make(map[string]string)
	}
	return data, nil
}

// save writes the file atomically: a temp file in the same directory is renamed over the old one.
func (s *FileStore) save(data *secretsFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode secrets: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp secrets file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict secrets file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close secrets file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key, or ErrNotFound.
func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	if value == "" {
		return ErrEmptyValue
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
