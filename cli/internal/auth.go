package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/logger"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
	"github.com/devilmonastery/novel/internal/store"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage authentication for the Novel CLI`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthRegisterCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())
	cmd.AddCommand(newAuthSetTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the Novel server",
		Long: `Authenticate with email and password. The access token is kept in the
context's token store (see 'novel config show').

Examples:
  # Prompt for email and password
  novel auth login

  # Prompt for the password only
  novel auth login --email reader@example.com

  # Keep the token in the OS keyring for this login
  novel auth login --token-store keyring`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			var err error
			if email == "" {
				if email, err = p.Line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.Secret("Password: ")
			if err != nil {
				return err
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			user, err := cliCtx.Client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Successfully logged in as %s\n", displayUser(user, email))
			printTokenExpiry(cmd, cliCtx)
			warnIfNotPersisted(cmd, cliCtx)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (if not provided, will prompt)")
	return cmd
}

func newAuthRegisterCommand() *cobra.Command {
	var (
		email       string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			var err error
			if email == "" {
				if email, err = p.Line("Email: "); err != nil {
					return err
				}
			}
			if displayName == "" {
				if displayName, err = p.Line("Display name: "); err != nil {
					return err
				}
			}
			password, err := p.Secret("Password: ")
			if err != nil {
				return err
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			confirm, err := p.Secret("Confirm password: ")
			if err != nil {
				return err
			}
			if confirm != password {
				return errors.New("passwords do not match")
			}

			user, err := cliCtx.Client.Register(cmd.Context(), email, password, displayName)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Account created for %s\n", displayUser(user, email))
			warnIfNotPersisted(cmd, cliCtx)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (if not provided, will prompt)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Name shown to other readers (if not provided, will prompt)")
	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			if !cliCtx.Client.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			cliCtx.Client.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in and when the token expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			out := cmd.OutOrStdout()

			token, ok := cliCtx.Client.Token()
			if !ok {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "Context: %s (%s)\n", cliCtx.ContextName, cliCtx.Context.BasePath())
			fmt.Fprintf(out, "Token store: %s\n", cliCtx.StoreKind)

			info, err := ParseTokenInfo(token)
			if err != nil {
				fmt.Fprintf(out, "Token: opaque (%v)\n", err)
			} else {
				if info.Email != "" {
					fmt.Fprintf(out, "Logged in as: %s\n", info.Email)
				}
				printTokenExpiry(cmd, cliCtx)
			}

			if verify {
				user, err := cliCtx.Client.Raw().Users.Profile(cmd.Context())
				if err != nil {
					return apiError("server rejected token", err)
				}
				fmt.Fprintf(out, "✓ Server accepted token for user %d (%s)\n", user.ID, displayUser(user, user.Email))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Check the token against the server")
	return cmd
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the access token (for use with curl and scripts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, ok := getCliContext(cmd).Client.Token()
			if !ok {
				return errors.New("not logged in\nRun 'novel auth login' first")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newAuthSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Store an access token obtained elsewhere",
		Long: `Store an access token obtained elsewhere, e.g. from the web UI.
Without an argument the token is read from stdin without echo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				var err error
				token, err = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Secret("Token: ")
				if err != nil {
					return err
				}
			}
			if token == "" {
				return errors.New("token must not be empty")
			}

			cliCtx.Logger.Debug("storing token", slog.String("token", logger.TokenPrefix(token)))
			cliCtx.Client.SetToken(token)
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Token stored")
			printTokenExpiry(cmd, cliCtx)
			warnIfNotPersisted(cmd, cliCtx)
			return nil
		},
	}
}

// printTokenExpiry prints when the current token expires, if it says
func printTokenExpiry(cmd *cobra.Command, cliCtx *CliContext) {
	token, ok := cliCtx.Client.Token()
	if !ok {
		return
	}
	info, err := ParseTokenInfo(token)
	if err != nil || info.ExpiresAt.IsZero() {
		return
	}

	out := cmd.OutOrStdout()
	now := time.Now()
	fmt.Fprintf(out, "  Token expires: %s\n", timeutil.FormatInTimezone(info.ExpiresAt, cliCtx.Context.Display.Timezone))
	if info.IsExpired(now) {
		fmt.Fprintf(out, "⚠  Token expired %s ago - run 'novel auth login' again\n", timeutil.FormatDuration(now.Sub(info.ExpiresAt)))
	} else {
		fmt.Fprintf(out, "✓  Valid for %s\n", timeutil.FormatDuration(info.ExpiresAt.Sub(now)))
	}
}

// warnIfNotPersisted tells the user when the token won't outlive this process
func warnIfNotPersisted(cmd *cobra.Command, cliCtx *CliContext) {
	switch {
	case cliCtx.Store == nil, cliCtx.StoreKind == store.KindMemory:
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: token store %q keeps the token for this command only\n", cliCtx.StoreKind)
	case !cliCtx.Store.Available():
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s token store is unavailable; the token was not saved\n", cliCtx.StoreKind)
	}
}

// displayUser labels u for messages, falling back when the server sent no user
func displayUser(u *client.User, fallback string) string {
	switch {
	case u == nil:
		return fallback
	case u.DisplayName != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.DisplayName, u.Email)
	case u.Email != "":
		return u.Email
	default:
		return fallback
	}
}
