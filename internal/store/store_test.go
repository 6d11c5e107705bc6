package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/devilmonastery/novel/internal/tokencache"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "novel")
	fs := NewFileStore(dir, "dev")

	if !fs.Available() {
		t.Fatal("expected file store to be available")
	}
	if _, err := fs.Get(tokencache.DefaultKey); !errors.Is(err, tokencache.ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	if err := fs.Set(tokencache.DefaultKey, "abc"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := fs.Get(tokencache.DefaultKey)
	if err != nil || got != "abc" {
		t.Fatalf("Get() = %q, %v, want abc", got, err)
	}

	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("stat credentials: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials mode = %o, want 600", perm)
	}
	if filepath.Base(fs.Path()) != "credentials-dev.json" {
		t.Errorf("unexpected credentials file %q", fs.Path())
	}

	if err := fs.Remove(tokencache.DefaultKey); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := os.Stat(fs.Path()); !os.IsNotExist(err) {
		t.Errorf("expected credentials file removed, stat err = %v", err)
	}
	if err := fs.Remove(tokencache.DefaultKey); err != nil {
		t.Errorf("second Remove() error: %v", err)
	}
}

func TestFileStoreKeepsOtherKeys(t *testing.T) {
	fs := NewFileStore(t.TempDir(), "")

	fs.Set("accessToken", "abc")
	fs.Set("refreshToken", "ref")
	fs.Remove("accessToken")

	data, err := os.ReadFile(fs.Path())
	if err != nil {
		t.Fatalf("read credentials: %v", err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		t.Fatalf("parse credentials: %v", err)
	}
	if len(values) != 1 || values["refreshToken"] != "ref" {
		t.Errorf("unexpected file contents %v", values)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := NewFileStore(t.TempDir(), "dev")
	if err := os.WriteFile(fs.Path(), []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := fs.Get(tokencache.DefaultKey)
	if err == nil || errors.Is(err, tokencache.ErrNotFound) {
		t.Errorf("Get() on corrupt file error = %v, want parse error", err)
	}

	// The cache treats the failure as "no token"
	cache := tokencache.New(fs)
	if _, ok := cache.Token(); ok {
		t.Error("expected corrupt store to read as absent")
	}
}

func TestFileStoreUnavailable(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail
	parent := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStore(filepath.Join(parent, "novel"), "dev")
	if fs.Available() {
		t.Fatal("expected store under a file path to be unavailable")
	}

	cache := tokencache.New(fs)
	cache.SetToken("abc")
	if got, ok := cache.Token(); !ok || got != "abc" {
		t.Errorf("Token() = %q, %v, want in-memory abc", got, ok)
	}
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	ks := NewKeyringStore("dev")

	if ks.Service() != "novel-dev" {
		t.Errorf("Service() = %q, want novel-dev", ks.Service())
	}
	if !ks.Available() {
		t.Fatal("expected mock keyring to be available")
	}
	if _, err := ks.Get(tokencache.DefaultKey); !errors.Is(err, tokencache.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if err := ks.Set(tokencache.DefaultKey, "abc"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got, err := ks.Get(tokencache.DefaultKey); err != nil || got != "abc" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	if err := ks.Remove(tokencache.DefaultKey); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := ks.Remove(tokencache.DefaultKey); err != nil {
		t.Errorf("second Remove() error: %v", err)
	}
}

func TestKeyringStoreUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("failed to connect to dbus"))
	t.Cleanup(keyring.MockInit)

	ks := NewKeyringStore("dev")
	if ks.Available() {
		t.Fatal("expected failing keyring to be unavailable")
	}

	cache := tokencache.New(ks)
	cache.SetToken("abc")
	cache.ClearToken()
	if _, ok := cache.Token(); ok {
		t.Error("expected no token")
	}
}

func TestMemoryStoreAvailability(t *testing.T) {
	ms := NewMemoryStore()
	ms.Set(tokencache.DefaultKey, "xyz")

	cache := tokencache.New(ms)
	ms.SetAvailable(false)
	if _, ok := cache.Token(); ok {
		t.Fatal("expected unavailable store to be skipped")
	}

	ms.SetAvailable(true)
	if got, ok := cache.Token(); !ok || got != "xyz" {
		t.Errorf("Token() = %q, %v, want xyz once store is back", got, ok)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "", want: KindFile},
		{input: "Keyring", want: KindKeyring},
		{input: "memory", want: KindMemory},
		{input: "none", want: KindNone},
		{input: "s3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		kind     Kind
		wantNil  bool
		wantName string
	}{
		{kind: KindFile, wantName: "file"},
		{kind: KindKeyring, wantName: "keyring"},
		{kind: KindMemory, wantName: "memory"},
		{kind: KindNone, wantNil: true},
	}

	for _, tt := range tests {
		s, err := Open(tt.kind, "dev")
		if err != nil {
			t.Fatalf("Open(%q) error: %v", tt.kind, err)
		}
		if tt.wantNil {
			if s != nil {
				t.Errorf("Open(%q) = %T, want nil", tt.kind, s)
			}
			continue
		}
		named, ok := s.(interface{ Name() string })
		if !ok || named.Name() != tt.wantName {
			t.Errorf("Open(%q) returned %T", tt.kind, s)
		}
	}

	if _, err := Open("s3", "dev"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
