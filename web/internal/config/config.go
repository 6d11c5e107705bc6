package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/devilmonastery/novel/internal/pkg/idgen"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// WebServerConfig represents the web server configuration
type WebServerConfig struct {
	Server    HTTPServer      `yaml:"server"`
	API       APITarget       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Templates TemplatesConfig `yaml:"templates"`
	Display   DisplayConfig   `yaml:"display"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	NodeID int64  `yaml:"node_id"` // Snowflake node for request IDs, unique per replica
}

// APITarget holds the Novel REST API location
type APITarget struct {
	BasePath  string `yaml:"base_path"`
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig holds session configuration
type SessionConfig struct {
	Secret       string `yaml:"secret"`         // base64, at least 32 bytes decoded
	MaxAgeDays   int    `yaml:"max_age_days"`   // cookie lifetime
	SecureCookie bool   `yaml:"secure_cookie"`  // set when served over HTTPS
}

// TemplatesConfig holds template loading configuration
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

// DisplayConfig controls presentation
type DisplayConfig struct {
	Timezone      string `yaml:"timezone"` // IANA zone for timestamps, empty for UTC
	PageSize      int    `yaml:"page_size"`
	FeaturedLimit int    `yaml:"featured_limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // Log level: debug, info, warn, error
	Format string `yaml:"format"` // Log format: json, text
}

// DefaultConfigPaths defines the default locations to search for web configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"/etc/novel/web.yaml",
	"/etc/novel/web.yml",
}

// Default returns the configuration used when no file is found
func Default() *WebServerConfig {
	return &WebServerConfig{
		Server: HTTPServer{
			Host:   "localhost",
			Port:   3000,
			NodeID: 1,
		},
		API: APITarget{
			BasePath: "http://localhost:8080",
		},
		Session: SessionConfig{
			MaxAgeDays: 30,
		},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
		Display: DisplayConfig{
			PageSize:      20,
			FeaturedLimit: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads the web server configuration from the specified file or default locations
func Load(configPath string) (*WebServerConfig, error) {
	config := Default()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}

	// Environment variables take precedence
	if basePath := os.Getenv("NOVEL_API_BASE_PATH"); basePath != "" {
		config.API.BasePath = basePath
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// validate performs basic validation on the web configuration
func validate(config *WebServerConfig) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if config.Server.NodeID < 0 || config.Server.NodeID > idgen.MaxNodeID() {
		return fmt.Errorf("server.node_id must be between 0 and %d", idgen.MaxNodeID())
	}

	u, err := url.Parse(config.API.BasePath)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_path must be an absolute URL, got %q", config.API.BasePath)
	}

	if config.Display.Timezone != "" && !timeutil.IsValidTimezone(config.Display.Timezone) {
		return fmt.Errorf("display.timezone %q is not a valid IANA timezone", config.Display.Timezone)
	}
	if config.Display.PageSize < 1 || config.Display.PageSize > 100 {
		return fmt.Errorf("display.page_size must be between 1 and 100")
	}

	return nil
}
