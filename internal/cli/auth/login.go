package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
	"github.com/steviee/nidhogg/pkg/yggdrasil"
)

// LoginOptions are the flags of the login command.
type LoginOptions struct {
	PasswordStdin bool
	Agent         string
	RequestUser   bool
}

// NewLoginCommand creates the auth login command.
func NewLoginCommand() *cobra.Command {
	var opts LoginOptions

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session",
		Long: `Authenticate with a username (or email) and password.

The password is read from NIDHOGG_PASSWORD, or from the first line of
stdin with --password-stdin. It is never written to disk.`,
		Example: `  # Log in for Minecraft
  echo "$PASSWORD" | nidhogg auth login steve@example.com --password-stdin

  # Log in without selecting a game
  nidhogg auth login steve@example.com --agent none

  # Include the account's user profile
  nidhogg auth login steve@example.com --request-user`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			creds, err := cmdutil.Credentials(args[0], opts.PasswordStdin, cmd.InOrStdin())
			if err != nil {
				return cmdutil.OutputError(cmd.OutOrStdout(), cmdutil.IsJSONOutput(), err)
			}
			return runLogin(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), creds, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&opts.Agent, "agent", "minecraft", "Game agent: minecraft, scrolls or none")
	cmd.Flags().BoolVar(&opts.RequestUser, "request-user", false, "Request the user profile")

	return cmd
}

// agentByName resolves the --agent flag.
func agentByName(name string) (*data.Agent, error) {
	switch strings.ToLower(name) {
	case "minecraft", "":
		agent := data.MinecraftAgent
		return &agent, nil
	case "scrolls":
		agent := data.ScrollsAgent
		return &agent, nil
	case "none":
		return nil, nil
	default:
		return nil, apierr.InvalidArgument("unknown agent %q (must be minecraft, scrolls or none)", name)
	}
}

func runLogin(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, creds data.AccountCredentials, opts LoginOptions) error {
	agent, err := agentByName(opts.Agent)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.AuthClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	lc := yggdrasil.NewLifecycle(client)
	result, err := lc.Login(ctx, creds, &yggdrasil.LoginOptions{
		Agent:       agent,
		RequestUser: opts.RequestUser,
	})
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("login failed: %w", err))
	}

	if err := env.SaveSession(lc.Session()); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	slog.Debug("session stored", "path", env.SessionPath, "session", lc.Session())

	if jsonOutput {
		return cmdutil.WriteSuccess(w, newResultView(result), fmt.Sprintf("Logged in as %s", displayName(result)))
	}

	_, _ = fmt.Fprintf(w, "Logged in as %s\n", displayName(result))
	printProfiles(w, result)
	return nil
}

// ResultView is the printable part of an auth result. Tokens are left out.
type ResultView struct {
	ProfileID         string             `json:"profile_id,omitempty"`
	Alias             string             `json:"alias,omitempty"`
	AvailableProfiles []data.GameProfile `json:"available_profiles,omitempty"`
	User              *data.UserProfile  `json:"user,omitempty"`
}

func newResultView(result *yggdrasil.AuthResult) ResultView {
	return ResultView{
		ProfileID:         result.Session.ProfileID,
		Alias:             result.Session.Alias,
		AvailableProfiles: result.AvailableProfiles,
		User:              result.User,
	}
}

func displayName(result *yggdrasil.AuthResult) string {
	if result.Session.Alias != "" {
		return result.Session.Alias
	}
	return "account without a game profile"
}

func printProfiles(w io.Writer, result *yggdrasil.AuthResult) {
	if result.SelectedProfile != nil {
		_, _ = fmt.Fprintf(w, "Profile: %s (%s)\n", result.SelectedProfile.Name, data.FormatUUID(result.SelectedProfile.ID))
	}
	if len(result.AvailableProfiles) > 1 {
		_, _ = fmt.Fprintf(w, "Available profiles (%d):\n", len(result.AvailableProfiles))
		for _, p := range result.AvailableProfiles {
			_, _ = fmt.Fprintf(w, "  - %-16s %s\n", p.Name, data.FormatUUID(p.ID))
		}
	}
	if result.User != nil {
		_, _ = fmt.Fprintf(w, "User: %s\n", result.User.ID)
	}
}
