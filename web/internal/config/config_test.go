package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsAndFile(t *testing.T) {
	t.Setenv("NOVEL_API_BASE_PATH", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("NOVEL_TEST_SECRET", "c2VjcmV0")

	path := writeConfig(t, `
server:
  port: 9000
api:
  base_path: https://api.novel.example.com
session:
  secret: ${NOVEL_TEST_SECRET}
display:
  timezone: Asia/Ho_Chi_Minh
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.API.BasePath != "https://api.novel.example.com" {
		t.Errorf("BasePath = %q", cfg.API.BasePath)
	}
	if cfg.Session.Secret != "c2VjcmV0" {
		t.Errorf("Secret = %q, want env-expanded value", cfg.Session.Secret)
	}
	if cfg.Display.PageSize != 20 || cfg.Templates.Path != "web/templates" {
		t.Errorf("expected defaults to survive partial file, got %+v", cfg)
	}
}

func TestEnvOverridesBasePath(t *testing.T) {
	t.Setenv("NOVEL_API_BASE_PATH", "http://backend:8080")

	cfg, err := Load(writeConfig(t, "api:\n  base_path: http://ignored:8080\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BasePath != "http://backend:8080" {
		t.Errorf("BasePath = %q, want env override", cfg.API.BasePath)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("NOVEL_API_BASE_PATH", "")

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "bad port", content: "server:\n  port: 70000\n", errPart: "server.port"},
		{name: "relative base path", content: "api:\n  base_path: /api\n", errPart: "api.base_path"},
		{name: "bad timezone", content: "display:\n  timezone: Mars/Olympus\n", errPart: "display.timezone"},
		{name: "bad page size", content: "display:\n  page_size: 500\n", errPart: "display.page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.errPart)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
