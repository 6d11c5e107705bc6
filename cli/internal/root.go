package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/logger"
	"github.com/devilmonastery/novel/internal/store"
	"github.com/devilmonastery/novel/internal/tokencache"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config      *Config
	ContextName string
	Context     *Context
	StoreKind   store.Kind
	Store       tokencache.Store
	Client      *client.Client
	Logger      *slog.Logger
}

// Global flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
	contextFlag   string
	tokenStore    string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "novel",
		Short:         "CLI for reading stories on a Novel server",
		Long:          `A command line interface for browsing and reading stories via the Novel REST API.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = logger.WithCommand(slog.Default().With("component", "cli"), cmd.CommandPath())
			ctx.Logger.Debug("CLI started")

			// Config commands manage the file themselves
			if isConfigCommand(cmd) {
				return nil
			}

			if err := ctx.init(); err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newStoriesCommand())
	rootCmd.AddCommand(newChaptersCommand())
	rootCmd.AddCommand(newGenresCommand())
	rootCmd.AddCommand(newFavoritesCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newCommentsCommand())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path, or 'default' for the per-user log file (logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&contextFlag, "context", "",
		"Config context to use (default: current-context)")
	rootCmd.PersistentFlags().StringVar(&tokenStore, "token-store", "",
		"Override the context's token store (file, keyring, memory, none)")

	return rootCmd
}

// init resolves the config context, opens its token store and builds the
// API client primed with any saved token
func (c *CliContext) init() error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = config

	c.ContextName = config.CurrentContext
	if contextFlag != "" {
		c.ContextName = contextFlag
	}
	apiCtx, ok := config.Contexts[c.ContextName]
	if !ok {
		return fmt.Errorf("context %q not found (see 'novel config list-contexts')", c.ContextName)
	}
	c.Context = apiCtx

	kindName := apiCtx.TokenStore
	if tokenStore != "" {
		kindName = tokenStore
	}
	c.StoreKind, err = store.ParseKind(kindName)
	if err != nil {
		return err
	}
	c.Store, err = store.Open(c.StoreKind, c.ContextName)
	if err != nil {
		return fmt.Errorf("failed to open %s token store: %w", c.StoreKind, err)
	}
	if c.Store != nil && !c.Store.Available() {
		c.Logger.Warn("token store unavailable, login will last for this command only",
			slog.String("store", string(c.StoreKind)))
	}

	c.Logger = logger.WithContext(c.Logger, c.ContextName)
	c.Client = client.Bootstrap(apiCtx.BasePath(), c.Store,
		client.WithLogger(c.Logger),
		client.WithUserAgent("novel-cli/1.0"))
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}
	if logFile == "default" {
		logFile = logger.GetDefaultLogFile("cli")
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}

// apiError adds a hint to errors the user can fix by logging in
func apiError(action string, err error) error {
	if client.IsLoginRequired(err) {
		return fmt.Errorf("%s: not logged in or session expired\nRun 'novel auth login' first", action)
	}
	if client.IsForbidden(err) {
		return fmt.Errorf("%s: permission denied", action)
	}
	return fmt.Errorf("%s: %w", action, err)
}
