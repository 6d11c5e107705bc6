package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/novel/internal/tokencache"
)

var testSecret = []byte(strings.Repeat("s", 32))

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, Options{})
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

// carryCookies copies Set-Cookie headers from a response onto a new request,
// like a browser would on its next page load
func carryCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewManager([]byte("short"), Options{}); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestStoreRoundTripAcrossRequests(t *testing.T) {
	m := newTestManager(t)

	// Request 1: login stores the token
	r1 := httptest.NewRequest(http.MethodPost, "/login", nil)
	w1 := httptest.NewRecorder()
	cache := tokencache.New(NewStore(m, r1, w1))
	cache.SetToken("abc")

	// Request 2: a fresh cache picks the token up from the cookie
	r2 := carryCookies(w1)
	w2 := httptest.NewRecorder()
	cache2 := tokencache.New(NewStore(m, r2, w2))
	if got, ok := cache2.Token(); !ok || got != "abc" {
		t.Fatalf("Token() on next request = %q, %v, want abc", got, ok)
	}

	// Request 3: logout expires the cookie
	cache2.ClearToken()
	cookies := w2.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected expired session cookie after clear, got %+v", cookies)
	}
}

func TestStoreUnavailableWithoutRequest(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name string
		r    *http.Request
		w    http.ResponseWriter
	}{
		{name: "no request", r: nil, w: httptest.NewRecorder()},
		{name: "no writer", r: httptest.NewRequest(http.MethodGet, "/", nil), w: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(m, tt.r, tt.w)
			if s.Available() {
				t.Fatal("expected store to be unavailable")
			}
			cache := tokencache.New(s)
			cache.SetToken("abc")
			if got, _ := cache.Token(); got != "abc" {
				t.Errorf("Token() = %q, want in-memory abc", got)
			}
		})
	}
}

func TestStoreGetMissingKey(t *testing.T) {
	m := newTestManager(t)
	s := NewStore(m, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if _, err := s.Get(tokencache.DefaultKey); !errors.Is(err, tokencache.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreTamperedCookie(t *testing.T) {
	m := newTestManager(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionName, Value: "tampered"})

	cache := tokencache.New(NewStore(m, r, httptest.NewRecorder()))
	if _, ok := cache.Token(); ok {
		t.Error("expected tampered cookie to read as no token")
	}
}

func TestCurrentUser(t *testing.T) {
	m := newTestManager(t)

	token := createTestToken(jwt.MapClaims{
		"sub": "reader@example.com",
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	})
	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	if err := NewStore(m, r1, w1).Set(tokencache.DefaultKey, token); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	user, err := m.CurrentUser(carryCookies(w1))
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.Email != "reader@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	if _, err := m.CurrentUser(httptest.NewRequest(http.MethodGet, "/", nil)); err != ErrNoToken {
		t.Errorf("CurrentUser() without cookie error = %v, want ErrNoToken", err)
	}
}

func TestFlashes(t *testing.T) {
	m := newTestManager(t)

	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	if err := m.SetFlash(r1, w1, "Added to favorites"); err != nil {
		t.Fatalf("SetFlash() error: %v", err)
	}

	msgs := m.Flashes(carryCookies(w1), httptest.NewRecorder())
	if len(msgs) != 1 || msgs[0] != "Added to favorites" {
		t.Errorf("Flashes() = %v", msgs)
	}
}
