// Package credential obtains the API key, prompting the user when none is stored.
package credential

import (
	"context"
	"errors"
	"fmt"

	"codingwithyou/internal/input"
	"codingwithyou/internal/logger"
	"codingwithyou/internal/secrets"
)

var keyRequest = input.Request{
	Label:       "Enter your OpenAI API key",
	Placeholder: "sk-...",
	Masked:      true,
}

// Manager reads and refreshes the single stored credential.
type Manager struct {
	store    secrets.Store
	prompter input.Prompter
	key      string
}

// NewManager creates a Manager storing the credential under secrets.APIKeyName.
func NewManager(store secrets.Store, prompter input.Prompter) *Manager {
	return &Manager{
		store:    store,
		prompter: prompter,
		key:      secrets.APIKeyName,
	}
}

// Get returns the stored credential, prompting for one when none is stored.
// A declined prompt yields the empty string and a nil error.
func (m *Manager) Get(ctx context.Context) (string, error) {
	value, err := m.store.Get(m.key)
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, secrets.ErrNotFound):
		logger.Debug("No stored credential, prompting", "key", m.key)
		return m.ask(ctx)
	default:
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
}

// Reset always prompts. A non-empty answer replaces the stored credential;
// a declined prompt keeps whatever was stored before.
func (m *Manager) Reset(ctx context.Context) (string, error) {
	logger.Debug("Resetting credential", "key", m.key)
	return m.ask(ctx)
}

// Clear removes the stored credential.
func (m *Manager) Clear() error {
	if err := m.store.Delete(m.key); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (m *Manager) ask(ctx context.Context) (string, error) {
	value, err := m.prompter.Prompt(ctx, keyRequest)
	if err != nil {
		return "", fmt.Errorf("failed to prompt for credential: %w", err)
	}
	if value == "" {
		logger.Debug("Credential prompt declined")
		return "", nil
	}

	if err := m.store.Set(m.key, value); err != nil {
		return "", fmt.Errorf("failed to store credential: %w", err)
	}
	logger.Info("Credential stored", "key", m.key)
	return value, nil
}
