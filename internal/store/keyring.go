package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/devilmonastery/novel/internal/tokencache"
)

// availabilityKey is read to test whether a keyring backend answers at all
const availabilityKey = "novel-keyring-check"

// KeyringStore keeps values in the OS keyring (macOS Keychain, Windows
// Credential Manager, Secret Service on Linux)
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a store under the service "novel-<contextName>"
func NewKeyringStore(contextName string) *KeyringStore {
	if contextName == "" {
		contextName = "default"
	}
	return &KeyringStore{service: fmt.Sprintf("novel-%s", contextName)}
}

// Name identifies the store in metrics
func (k *KeyringStore) Name() string { return "keyring" }

// Service returns the keyring service name
func (k *KeyringStore) Service() string { return k.service }

// Available reports whether a keyring backend responds. Headless machines
// without a secret service, and unsupported platforms, report false.
func (k *KeyringStore) Available() bool {
	_, err := keyring.Get(k.service, availabilityKey)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Get returns the value stored under key
func (k *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", tokencache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return value, nil
}

// Set writes key to the keyring
func (k *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// Remove deletes key; a missing key is not an error
func (k *KeyringStore) Remove(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
