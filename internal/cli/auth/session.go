package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/internal/config"
	"github.com/steviee/nidhogg/pkg/data"
	"github.com/steviee/nidhogg/pkg/yggdrasil"
)

// ErrSessionInvalid is returned by validate when the server rejects the
// stored session.
var ErrSessionInvalid = errors.New("stored session is no longer valid, run 'nidhogg auth refresh'")

// NewValidateCommand creates the auth validate command.
func NewValidateCommand() *cobra.Command {
	var withClientToken bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether the stored session is valid",
		Long: `Ask the authentication server whether the stored access token can still
be used. The command fails when it cannot.`,
		Example: `  # Validate the stored session
  nidhogg auth validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), withClientToken)
		},
	}

	cmd.Flags().BoolVar(&withClientToken, "with-client-token", true, "Send the client token along with the access token")

	return cmd
}

// resume loads the stored session into a lifecycle.
func resume(env *cmdutil.Env) (*yggdrasil.Lifecycle, *yggdrasil.Client, error) {
	session, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	client, err := env.AuthClient()
	if err != nil {
		return nil, nil, err
	}
	return yggdrasil.ResumeLifecycle(client, session), client, nil
}

func runValidate(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, withClientToken bool) error {
	lc, client, err := resume(env)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	valid, err := lc.Validate(ctx, withClientToken)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("validate failed: %w", err))
	}

	if jsonOutput {
		if err := cmdutil.WriteSuccess(w, map[string]bool{"valid": valid}, ""); err != nil {
			return err
		}
	} else if valid {
		_, _ = fmt.Fprintln(w, "Session is valid")
	}

	if !valid {
		return ErrSessionInvalid
	}
	return nil
}

// NewRefreshCommand creates the auth refresh command.
func NewRefreshCommand() *cobra.Command {
	var requestUser bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored session",
		Long: `Exchange the stored access token for a new one. The old token stops
working and the stored session is replaced.`,
		Example: `  # Refresh the stored session
  nidhogg auth refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runRefresh(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), requestUser)
		},
	}

	cmd.Flags().BoolVar(&requestUser, "request-user", false, "Request the user profile")

	return cmd
}

func runRefresh(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, requestUser bool) error {
	lc, client, err := resume(env)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	result, err := lc.Refresh(ctx, &yggdrasil.RefreshOptions{RequestUser: requestUser})
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("refresh failed: %w", err))
	}

	if err := env.SaveSession(lc.Session()); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, newResultView(result), "Session refreshed")
	}

	_, _ = fmt.Fprintf(w, "Session refreshed for %s\n", displayName(result))
	printProfiles(w, result)
	return nil
}

// NewInvalidateCommand creates the auth invalidate command.
func NewInvalidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Invalidate the stored session",
		Long: `Invalidate the stored access token and remove the session file.
A token the server already considers invalid is not an error.`,
		Example: `  # Log out this machine
  nidhogg auth invalidate`,
		Aliases: []string{"logout"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runInvalidate(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
		},
	}

	return cmd
}

func runInvalidate(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	lc, client, err := resume(env)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	if err := lc.Invalidate(ctx); err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("invalidate failed: %w", err))
	}

	if err := env.ClearSession(); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, map[string]string{"state": lc.State().String()}, "Session invalidated")
	}
	_, _ = fmt.Fprintln(w, "Session invalidated")
	return nil
}

// NewSignOutCommand creates the auth signout command.
func NewSignOutCommand() *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "signout <username>",
		Short: "Invalidate every session of an account",
		Long: `Sign out of every session of the account, on every machine.
Needs the account password, read like for login.`,
		Example: `  # Sign out everywhere
  echo "$PASSWORD" | nidhogg auth signout steve@example.com --password-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			creds, err := cmdutil.Credentials(args[0], passwordStdin, cmd.InOrStdin())
			if err != nil {
				return cmdutil.OutputError(cmd.OutOrStdout(), cmdutil.IsJSONOutput(), err)
			}
			return runSignOut(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), creds)
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func runSignOut(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, creds data.AccountCredentials) error {
	client, err := env.AuthClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	lc := yggdrasil.NewLifecycle(client)
	if session, err := env.Session(); err == nil {
		lc = yggdrasil.ResumeLifecycle(client, session)
	}

	if err := lc.SignOut(ctx, creds); err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("sign out failed: %w", err))
	}

	if err := env.ClearSession(); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, map[string]string{"state": lc.State().String()}, "Signed out of every session")
	}
	_, _ = fmt.Fprintf(w, "Signed out of every session of %s\n", creds.Username)
	return nil
}

// NewStatusCommand creates the auth status command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long:  `Show the stored session without contacting the server. Tokens are redacted.`,
		Example: `  # Show who is logged in
  nidhogg auth status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runStatus(cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
		},
	}

	return cmd
}

// StatusView is the printable form of the stored session.
type StatusView struct {
	ProfileID   string    `json:"profile_id,omitempty"`
	Alias       string    `json:"alias,omitempty"`
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

func runStatus(w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	stored, err := config.LoadSession(env.SessionPath)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	view := StatusView{
		ProfileID:   stored.ProfileID,
		Alias:       stored.Alias,
		AccessToken: maskToken(stored.AccessToken),
		SavedAt:     stored.SavedAt,
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, view, "")
	}

	if view.Alias != "" {
		_, _ = fmt.Fprintf(w, "Logged in as %s (%s)\n", view.Alias, data.FormatUUID(view.ProfileID))
	} else {
		_, _ = fmt.Fprintln(w, "Logged in, no game profile selected")
	}
	_, _ = fmt.Fprintf(w, "Access token: %s\n", view.AccessToken)
	_, _ = fmt.Fprintf(w, "Stored: %s\n", view.SavedAt.Local().Format(time.RFC1123))
	return nil
}

// maskToken keeps the first characters of a token.
func maskToken(token string) string {
	const keep = 6
	if len(token) <= keep {
		return "***"
	}
	return token[:keep] + "***"
}
