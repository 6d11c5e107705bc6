package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/store"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.CurrentContext != "local" {
		t.Errorf("CurrentContext = %q, want local", config.CurrentContext)
	}
	ctx, err := config.GetCurrentContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.BasePath() != client.DefaultBasePath {
		t.Errorf("BasePath() = %q, want %q", ctx.BasePath(), client.DefaultBasePath)
	}
	if kind, err := ctx.StoreKind(); err != nil || kind != store.KindFile {
		t.Errorf("StoreKind() = %q, %v", kind, err)
	}

	info, err := os.Stat(filepath.Join(home, ".novel"))
	if err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestContextManagement(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config := DefaultConfig()
	remote := &Context{}
	remote.API.BasePath = "https://novel.example.com/"
	config.AddContext("remote", remote)

	if err := config.SetCurrentContext("missing"); err == nil {
		t.Error("expected switching to an unknown context to fail")
	}
	if err := config.SetCurrentContext("remote"); err != nil {
		t.Fatal(err)
	}
	if err := config.DeleteContext("remote"); err == nil {
		t.Error("expected deleting the current context to fail")
	}
	if err := SaveConfig(config); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := loaded.GetCurrentContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.BasePath() != "https://novel.example.com" {
		t.Errorf("BasePath() = %q, want trailing slash trimmed", ctx.BasePath())
	}
	if ctx.Theme() != "auto" {
		t.Errorf("Theme() = %q, want auto", ctx.Theme())
	}
}

func TestAddContextValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing base path", args: []string{"x"}, wantErr: "base-path"},
		{name: "unknown token store", args: []string{"x", "--base-path", "http://api", "--token-store", "vault"}, wantErr: "unknown token store"},
		{name: "bad timezone", args: []string{"x", "--base-path", "http://api", "--timezone", "Mars/Olympus"}, wantErr: "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			_, err := runCLI(t, "", append([]string{"config", "add-context"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigCommandsSkipClientSetup(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// A broken token store override must not affect config commands
	out, err := runCLI(t, "", "--token-store", "vault", "config", "list-contexts")
	if err != nil {
		t.Fatalf("list-contexts: %v\n%s", err, out)
	}
	if !strings.Contains(out, "local") {
		t.Errorf("expected default context in output:\n%s", out)
	}
}

func TestAddContextUpdatesOnlyGivenFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := runCLI(t, "", "config", "add-context", "prod",
		"--base-path", "https://api.novel.example.com", "--token-store", "keyring", "--theme", "dark"); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "", "config", "add-context", "prod", "--web-url", "https://read.example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Context "prod" updated`) {
		t.Errorf("unexpected output %q", out)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	ctx := config.Contexts["prod"]
	if ctx.BasePath() != "https://api.novel.example.com" || ctx.TokenStore != "keyring" || ctx.Theme() != "dark" {
		t.Errorf("update overwrote unspecified fields: %+v", ctx)
	}
	if ctx.Web.URL != "https://read.example.com" {
		t.Errorf("Web.URL = %q", ctx.Web.URL)
	}
}

func TestDeleteContextForgetsToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if _, err := runCLI(t, "", "config", "add-context", "old", "--base-path", "http://localhost:9"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "", "--context", "old", "auth", "set-token", "opaque-token"); err != nil {
		t.Fatal(err)
	}
	credentials := filepath.Join(home, ".config", "novel", "credentials-old.json")
	if _, err := os.Stat(credentials); err != nil {
		t.Fatalf("expected stored token: %v", err)
	}

	if _, err := runCLI(t, "", "config", "delete-context", "old"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(credentials); !os.IsNotExist(err) {
		t.Errorf("expected credentials to be removed, stat err = %v", err)
	}
	if _, err := runCLI(t, "", "config", "delete-context", "local"); err == nil {
		t.Error("expected deleting the current context to fail")
	}
}
