package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/pkg/timeutil"
	"github.com/devilmonastery/novel/internal/store"
	"github.com/devilmonastery/novel/internal/tokencache"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration and contexts",
		Long:  `Manage CLI configuration including API contexts, similar to kubectl contexts.`,
	}

	cmd.AddCommand(newCurrentContextCommand())
	cmd.AddCommand(newUseContextCommand())
	cmd.AddCommand(newListContextsCommand())
	cmd.AddCommand(newAddContextCommand())
	cmd.AddCommand(newDeleteContextCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// current-context command
func newCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Display the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentContext)
			return nil
		},
	}
}

// updateConfig loads the config, applies fn and saves the result
func updateConfig(fn func(*Config) error) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := fn(config); err != nil {
		return err
	}
	if err := SaveConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// use-context command
func newUseContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context CONTEXT_NAME",
		Short: "Switch to a different context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := updateConfig(func(c *Config) error {
				return c.SetCurrentContext(args[0])
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", args[0])
			return nil
		},
	}
}

// list-contexts command
func newListContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list-contexts",
		Aliases: []string{"get-contexts"},
		Short:   "List all available contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if len(config.Contexts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured")
				return nil
			}

			// Sort context names for consistent output
			names := make([]string, 0, len(config.Contexts))
			for name := range config.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CURRENT\tNAME\tBASE PATH\tTOKEN STORE\tTHEME")

			for _, name := range names {
				ctx := config.Contexts[name]
				current := " "
				if name == config.CurrentContext {
					current = "*"
				}
				kind, _ := ctx.StoreKind()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					current,
					name,
					ctx.BasePath(),
					kind,
					ctx.Theme(),
				)
			}
			w.Flush()

			return nil
		},
	}
}

// add-context command
func newAddContextCommand() *cobra.Command {
	var (
		basePath   string
		webURL     string
		tokenStore string
		theme      string
		timezone   string
	)

	cmd := &cobra.Command{
		Use:   "add-context CONTEXT_NAME",
		Short: "Add or update a context",
		Long: `Add a context, or update an existing one. When updating, only the flags
given are changed.

Examples:
  novel config add-context prod --base-path https://api.novel.example.com --token-store keyring
  novel config add-context prod --theme dark`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]
			flags := cmd.Flags()

			kind, err := store.ParseKind(tokenStore)
			if err != nil {
				return err
			}
			if timezone != "" && !timeutil.IsValidTimezone(timezone) {
				return fmt.Errorf("invalid timezone %q", timezone)
			}

			var created bool
			err = updateConfig(func(c *Config) error {
				ctx, ok := c.Contexts[contextName]
				if !ok {
					if basePath == "" {
						return fmt.Errorf("--base-path is required for a new context")
					}
					ctx = &Context{}
					ctx.TokenStore = string(kind)
					ctx.Rendering.Theme = theme
					created = true
				}

				if flags.Changed("base-path") {
					ctx.API.BasePath = basePath
				}
				if flags.Changed("web-url") {
					ctx.Web.URL = webURL
				}
				if flags.Changed("token-store") {
					ctx.TokenStore = string(kind)
				}
				if flags.Changed("theme") {
					ctx.Rendering.Theme = theme
				}
				if flags.Changed("timezone") {
					ctx.Display.Timezone = timezone
				}

				c.AddContext(contextName, ctx)
				if len(c.Contexts) == 1 {
					c.CurrentContext = contextName
				}
				return nil
			})
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Context %q added\n", contextName)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Context %q updated\n", contextName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&basePath, "base-path", "", "Novel API base URL (required for a new context)")
	cmd.Flags().StringVar(&webURL, "web-url", "", "novel-web address, for story links (optional)")
	cmd.Flags().StringVar(&tokenStore, "token-store", string(store.KindFile), "Where to keep the access token (file, keyring, memory, none)")
	cmd.Flags().StringVar(&theme, "theme", "auto", "Glamour theme for reading chapters")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for timestamps (default: local)")

	return cmd
}

// delete-context command
func newDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context CONTEXT_NAME",
		Short: "Delete a context and forget its stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]

			var deleted *Context
			err := updateConfig(func(c *Config) error {
				deleted = c.Contexts[contextName]
				return c.DeleteContext(contextName)
			})
			if err != nil {
				return err
			}

			if err := forgetToken(contextName, deleted); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not remove stored token: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", contextName)
			return nil
		},
	}
}

// forgetToken removes the access token a deleted context left in its store
func forgetToken(contextName string, ctx *Context) error {
	kind, err := ctx.StoreKind()
	if err != nil {
		return err
	}
	s, err := store.Open(kind, contextName)
	if err != nil || s == nil || !s.Available() {
		return err
	}
	return s.Remove(tokencache.DefaultKey)
}

// show command shows the current context
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current context configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, err := config.GetCurrentContext()
			if err != nil {
				return fmt.Errorf("failed to get current context: %w", err)
			}

			out := cmd.OutOrStdout()
			kind, _ := ctx.StoreKind()
			fmt.Fprintf(out, "Current context: %s\n", config.CurrentContext)
			fmt.Fprintf(out, "  API Base Path: %s\n", ctx.BasePath())
			if ctx.Web.URL != "" {
				fmt.Fprintf(out, "  Web URL: %s\n", ctx.Web.URL)
			}
			fmt.Fprintf(out, "  Token Store: %s\n", kind)
			fmt.Fprintf(out, "  Glamour Theme: %s\n", ctx.Theme())
			if ctx.Display.Timezone != "" {
				fmt.Fprintf(out, "  Timezone: %s\n", ctx.Display.Timezone)
			}

			configPath, _ := GetConfigPath()
			fmt.Fprintf(out, "  Config File: %s\n", configPath)

			return nil
		},
	}
}
