package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warning", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: slog.LevelDebug, Format: "json"})

	log.Info("login", slog.String("token", "eyJhbGciOi"), slog.String("password", "hunter2"), slog.String("email", "a@b.c"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if entry["token"] != "[REDACTED]" || entry["password"] != "[REDACTED]" {
		t.Errorf("secrets not redacted: %v", entry)
	}
	if entry["email"] != "a@b.c" {
		t.Errorf("email = %v, want unredacted", entry["email"])
	}
}

func TestTokenPrefix(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{token: "", want: ""},
		{token: "abc", want: "***"},
		{token: "eyJhbGciOiJIUzI1NiJ9", want: "eyJhbGci…"},
	}

	for _, tt := range tests {
		if got := TokenPrefix(tt.token); got != tt.want {
			t.Errorf("TokenPrefix(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "novel.log")
	log, err := SetupLogger(Config{Level: slog.LevelInfo, LogFile: path, Format: "text"})
	if err != nil {
		t.Fatalf("SetupLogger() error: %v", err)
	}
	log.Info("hello")

	if !strings.HasSuffix(GetDefaultLogFile("cli"), filepath.Join("novel", "cli.log")) {
		t.Errorf("unexpected default log file %q", GetDefaultLogFile("cli"))
	}
}
