package session

import (
	"fmt"
	"net/http"

	"github.com/devilmonastery/novel/internal/tokencache"
)

// Store exposes one request's session cookie as a tokencache.Store. It must
// be created per request, since it writes Set-Cookie on the response.
type Store struct {
	manager *Manager
	request *http.Request
	writer  http.ResponseWriter
}

// NewStore binds the session of r/w to a token store. Either may be nil
// (background work with no page), in which case the store is unavailable.
func NewStore(manager *Manager, r *http.Request, w http.ResponseWriter) *Store {
	return &Store{manager: manager, request: r, writer: w}
}

// Name identifies the store in metrics
func (s *Store) Name() string { return "session" }

// Available reports whether there is a request and response to work with
func (s *Store) Available() bool {
	return s.manager != nil && s.request != nil && s.writer != nil
}

// Get returns the value stored under key in the session
func (s *Store) Get(key string) (string, error) {
	sess, err := s.manager.GetSession(s.request)
	if err != nil {
		return "", fmt.Errorf("session cookie: %w", err)
	}
	value, ok := sess.Values[key].(string)
	if !ok {
		return "", tokencache.ErrNotFound
	}
	return value, nil
}

// Set writes key into the session and saves the cookie
func (s *Store) Set(key, value string) error {
	// Decode errors leave a usable fresh session, which we overwrite
	sess, _ := s.manager.GetSession(s.request)
	sess.Values[key] = value
	return sess.Save(s.request, s.writer)
}

// Remove deletes key from the session, expiring the cookie once it is empty
func (s *Store) Remove(key string) error {
	sess, err := s.manager.GetSession(s.request)
	if err != nil {
		// Nothing readable to remove from
		return nil
	}
	if _, ok := sess.Values[key]; !ok {
		return nil
	}
	delete(sess.Values, key)
	if len(sess.Values) == 0 {
		sess.Options.MaxAge = -1
	}
	return sess.Save(s.request, s.writer)
}
