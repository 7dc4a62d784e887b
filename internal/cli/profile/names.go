package profile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/data"
)

// NewNamesCommand creates the profile names command.
func NewNamesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names <uuid>",
		Short: "Show the name history of a profile",
		Long:  `Show every name a profile has had, oldest first.`,
		Example: `  # Name history
  nidhogg profile names 069a79f444e94726a5befca90e38aaf5`,
		Aliases: []string{"history"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runNames(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args[0])
		},
	}

	return cmd
}

func runNames(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, id string) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	history, err := client.GetNameHistory(ctx, id)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, map[string]interface{}{
			"id":    data.TrimUUID(id),
			"names": history,
		}, "")
	}

	for _, entry := range history {
		_, _ = fmt.Fprintf(w, "%-16s %s\n", entry.Name, changedAt(entry))
	}
	return nil
}

func changedAt(entry data.NameHistoryEntry) string {
	if entry.ChangedToAt == nil {
		return "original"
	}
	return time.UnixMilli(*entry.ChangedToAt).UTC().Format(time.RFC3339)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
