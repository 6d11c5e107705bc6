package tokencache

import "errors"

// DefaultKey is the fixed key the bearer token is stored under.
const DefaultKey = "accessToken"

// ErrNotFound is returned by a Store when the key holds no value
var ErrNotFound = errors.New("token not found in store")

// Store is a synchronous, string-keyed persistent store.
// Availability depends on the host environment (a browser session, a keyring
// daemon, a writable home directory) and is checked before every use.
type Store interface {
	// Available reports whether the store can be used right now
	Available() bool

	// Get returns the value under key, or ErrNotFound
	Get(key string) (string, error)

	// Set writes value under key, overwriting any prior value
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
