// Package store provides the persistent token stores the front ends plug
// into a tokencache.Cache: a JSON file, the OS keyring, and process memory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/devilmonastery/novel/internal/tokencache"
)

// DefaultDir returns ~/.config/novel, where credential files live
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "novel"), nil
}

// FileStore keeps values in a JSON object on disk, one file per CLI context.
// The file is only readable by its owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at dir/credentials-<contextName>.json
func NewFileStore(dir, contextName string) *FileStore {
	if contextName == "" {
		contextName = "default"
	}
	return &FileStore{path: filepath.Join(dir, fmt.Sprintf("credentials-%s.json", contextName))}
}

// Path returns the credentials file path
func (f *FileStore) Path() string {
	return f.path
}

// Name identifies the store in metrics
func (f *FileStore) Name() string { return "file" }

// Available reports whether the credentials directory exists or can be created
func (f *FileStore) Available() bool {
	return os.MkdirAll(filepath.Dir(f.path), 0o700) == nil
}

// Get returns the value stored under key
func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", tokencache.ErrNotFound
	}
	return value, nil
}

// Set writes key, keeping any other keys in the file
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil && !errors.Is(err, tokencache.ErrNotFound) {
		return err
	}
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value
	return f.save(values)
}

// Remove deletes key. The file is removed once it holds no keys.
func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if errors.Is(err, tokencache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)

	if len(values) == 0 {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		return nil
	}
	return f.save(values)
}

// load reads the file; a missing file is tokencache.ErrNotFound
func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tokencache.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return values, nil
}

// save writes values atomically with owner-only permissions
func (f *FileStore) save(values map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}
