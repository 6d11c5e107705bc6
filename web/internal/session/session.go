package session

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

// SessionName is the name of the session cookie
const SessionName = "novel_session"

// Options configures the session cookie
type Options struct {
	// MaxAge in seconds; zero uses 30 days
	MaxAge int
	// Secure marks the cookie HTTPS-only
	Secure bool
}

// Manager wraps gorilla/sessions for our use case
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager. The cookie's signing and encryption
// keys are both derived from secret, which must be at least 32 bytes.
func NewManager(secret []byte, opts Options) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(secret))
	}

	hashKey, err := deriveKey(secret, "novel-session-hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "novel-session-block", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)

	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = 30 * 24 * 60 * 60
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(maxAge)

	return &Manager{store: store}, nil
}

// deriveKey expands secret into an n-byte key bound to purpose
func deriveKey(secret []byte, purpose string, n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}
	return key, nil
}

// GetSession returns the request's session. A cookie that fails to decode
// (rotated secret, tampering) yields a fresh session along with the error.
func (m *Manager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, SessionName)
}

// Destroy expires the session cookie
func (m *Manager) Destroy(r *http.Request, w http.ResponseWriter) error {
	sess, err := m.store.Get(r, SessionName)
	if err != nil && sess == nil {
		return nil
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetFlash queues a one-shot message for the next page render
func (m *Manager) SetFlash(r *http.Request, w http.ResponseWriter, msg string) error {
	sess, _ := m.store.Get(r, SessionName)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}

// Flashes pops queued messages. The caller's response must still be written
// after this so the emptied session is saved.
func (m *Manager) Flashes(r *http.Request, w http.ResponseWriter) []string {
	sess, _ := m.store.Get(r, SessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
