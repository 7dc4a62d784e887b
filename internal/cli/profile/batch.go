package profile

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
)

// NewBatchCommand creates the profile batch command.
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <uuid> [uuid...]",
		Short: "Fetch many profiles concurrently",
		Long: `Fetch several profiles concurrently. The number of requests in flight
is limited by batch.concurrency in the config file. A failed lookup does
not stop the others.`,
		Example: `  # Fetch two profiles
  nidhogg profile batch 069a79f444e94726a5befca90e38aaf5 853c80ef3c3749fdaa49938b674adae6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args)
		},
	}

	return cmd
}

// BatchEntry is one result of a batch lookup.
type BatchEntry struct {
	Requested string       `json:"requested"`
	Profile   *ProfileView `json:"profile,omitempty"`
	Error     string       `json:"error,omitempty"`
	Kind      string       `json:"kind,omitempty"`
}

func runBatch(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, ids []string) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	results := client.GetProfiles(ctx, ids)

	entries := make([]BatchEntry, 0, len(results))
	failed := 0
	for _, r := range results {
		entry := BatchEntry{Requested: r.ID}
		if r.Err != nil {
			failed++
			entry.Error = r.Err.Error()
			entry.Kind = cmdutil.KindName(r.Err)
		} else {
			view := newProfileView(r.Profile)
			entry.Profile = &view
		}
		entries = append(entries, entry)
	}

	if jsonOutput {
		out := cmdutil.Output{
			Status:  "success",
			Data:    map[string]interface{}{"results": entries, "count": len(entries), "failed": failed},
			Message: fmt.Sprintf("Fetched %d of %d profile(s)", len(entries)-failed, len(entries)),
		}
		if failed == len(entries) {
			out.Status = "error"
		}
		if err := cmdutil.WriteJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, e := range entries {
			if e.Profile != nil {
				_, _ = fmt.Fprintf(w, "%-36s %s\n", e.Profile.UUID, e.Profile.Name)
			} else {
				_, _ = fmt.Fprintf(w, "%-36s error: %s\n", e.Requested, e.Error)
			}
		}
	}

	if failed == len(entries) {
		return fmt.Errorf("failed to fetch any profiles")
	}
	return nil
}
