package profile

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

// NewUUIDCommand creates the profile uuid command.
func NewUUIDCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "uuid <name>",
		Short: "Resolve a player name to a UUID",
		Long: `Resolve a player name to the UUID of the profile holding it.

With --at, resolve the profile that held the name at that time. The time
is either RFC 3339 or seconds since the epoch.`,
		Example: `  # Current holder of a name
  nidhogg profile uuid Notch

  # Holder at a point in time
  nidhogg profile uuid Cydhra --at 1492297560`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runUUID(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args[0], at)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Point in time (RFC 3339 or unix seconds)")

	return cmd
}

// parseAt parses the --at flag. An empty value means now.
func parseAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		t := time.Unix(secs, 0)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apierr.InvalidArgument("invalid time %q: must be RFC 3339 or unix seconds", value)
	}
	return &t, nil
}

func runUUID(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, name, atValue string) error {
	at, err := parseAt(atValue)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	entry, err := client.GetUUIDByUsername(ctx, name, at)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	if entry == nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("no profile named %q", name))
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, newEntryView(*entry), "")
	}

	_, _ = fmt.Fprintf(w, "%s %s%s\n", entry.Name, data.FormatUUID(entry.ID), entryFlags(*entry))
	return nil
}

// EntryView is a UUID entry with its UUID in both notations.
type EntryView struct {
	data.UUIDEntry
	Dashed string `json:"uuid"`
}

func newEntryView(e data.UUIDEntry) EntryView {
	return EntryView{UUIDEntry: e, Dashed: data.FormatUUID(e.ID)}
}

func entryFlags(e data.UUIDEntry) string {
	var flags string
	if e.Legacy != nil && *e.Legacy {
		flags += " [legacy]"
	}
	if e.Demo != nil && *e.Demo {
		flags += " [demo]"
	}
	return flags
}

// NewUUIDsCommand creates the profile uuids command.
func NewUUIDsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uuids <name> [name...]",
		Short: "Resolve many player names in one request",
		Long: `Resolve up to 100 player names in a single request. Names without a
profile are listed as not found.`,
		Example: `  # Resolve several names
  nidhogg profile uuids Notch jeb_ Dinnerbone`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runUUIDs(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args)
		},
	}

	return cmd
}

func runUUIDs(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, names []string) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	entries, err := client.GetUUIDsByNames(ctx, names)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	missing := missingNames(names, entries)

	if jsonOutput {
		views := make([]EntryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, newEntryView(e))
		}
		result := map[string]interface{}{
			"profiles": views,
			"count":    len(views),
		}
		if len(missing) > 0 {
			result["not_found"] = missing
		}
		return cmdutil.WriteSuccess(w, result, fmt.Sprintf("Resolved %d of %d name(s)", len(entries), len(names)))
	}

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%-16s %s%s\n", e.Name, data.FormatUUID(e.ID), entryFlags(e))
	}
	for _, name := range missing {
		_, _ = fmt.Fprintf(w, "%-16s not found\n", name)
	}
	return nil
}

// missingNames returns the requested names without an entry.
func missingNames(names []string, entries []data.UUIDEntry) []string {
	found := make(map[string]bool, len(entries))
	for _, e := range entries {
		found[normalizeName(e.Name)] = true
	}

	var missing []string
	for _, name := range names {
		if !found[normalizeName(name)] {
			missing = append(missing, name)
		}
	}
	return missing
}
