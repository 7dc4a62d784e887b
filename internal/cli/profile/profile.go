package profile

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the profile command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Look up player names, UUIDs and profiles",
		Long: `Resolve player names to UUIDs and fetch public profile data.

None of these commands need a session.`,
		Example: `  # Resolve a name
  nidhogg profile uuid Notch

  # Resolve who held a name at a point in time
  nidhogg profile uuid Cydhra --at 2017-04-15T23:06:00Z

  # Resolve many names at once
  nidhogg profile uuids Notch jeb_ Dinnerbone

  # Show the name history of a profile
  nidhogg profile names 069a79f444e94726a5befca90e38aaf5

  # Show a profile with its skin and cape
  nidhogg profile get 069a79f4-44e9-4726-a5be-fca90e38aaf5

  # Fetch many profiles concurrently
  nidhogg profile batch 069a79f444e94726a5befca90e38aaf5 853c80ef3c3749fdaa49938b674adae6`,
		Aliases: []string{"profiles", "player"},
	}

	// Add subcommands
	cmd.AddCommand(NewUUIDCommand())
	cmd.AddCommand(NewUUIDsCommand())
	cmd.AddCommand(NewNamesCommand())
	cmd.AddCommand(NewGetCommand())
	cmd.AddCommand(NewBatchCommand())

	return cmd
}
