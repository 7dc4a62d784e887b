package auth

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the auth command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Yggdrasil sessions",
		Long: `Log in to a Mojang account and manage the resulting session.

The session of the last login is stored in the session file and used by
every command that needs an access token. The client token is kept in the
config file so the session can be refreshed later.`,
		Example: `  # Log in and store the session
  echo "$PASSWORD" | nidhogg auth login steve@example.com --password-stdin

  # Check whether the stored session is still usable
  nidhogg auth validate

  # Get a fresh access token
  nidhogg auth refresh

  # Invalidate the stored session
  nidhogg auth invalidate

  # Invalidate every session of the account
  NIDHOGG_PASSWORD=... nidhogg auth signout steve@example.com`,
	}

	// Add subcommands
	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewRefreshCommand())
	cmd.AddCommand(NewInvalidateCommand())
	cmd.AddCommand(NewSignOutCommand())
	cmd.AddCommand(NewStatusCommand())

	return cmd
}
