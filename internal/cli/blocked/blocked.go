package blocked

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/mojang"
)

// NewCommand creates the blocked command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "Query the blocked server list",
		Long: `Query the list of SHA-1 hashes of server addresses blocked by Mojang.

Hosts are checked against the exact address and every wildcard parent
pattern, such as *.example.com or 10.0.*.`,
		Example: `  # Check whether a server is blocked
  nidhogg blocked check mc.example.com

  # Count the blocked hashes
  nidhogg blocked list`,
	}

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewListCommand())

	return cmd
}

// NewCheckCommand creates the blocked check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check <host>...",
		Short:   "Check whether servers are blocked",
		Example: `  nidhogg blocked check mc.example.com 10.0.0.1`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args)
		},
	}

	return cmd
}

// NewListCommand creates the blocked list command.
func NewListCommand() *cobra.Command {
	var showHashes bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the blocked hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), showHashes)
		},
	}

	cmd.Flags().BoolVar(&showHashes, "hashes", false, "Print every hash instead of the count")

	return cmd
}

// HostStatus is the check result of a single host.
type HostStatus struct {
	Host    string `json:"host"`
	Blocked bool   `json:"blocked"`
}

// ListView is the JSON form of the blocked list.
type ListView struct {
	Count  int      `json:"count"`
	Hashes []string `json:"hashes,omitempty"`
}

func fetch(ctx context.Context, env *cmdutil.Env) (*mojang.BlockedServers, error) {
	client, err := env.MojangClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.GetBlockedServers(ctx)
}

func runCheck(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, hosts []string) error {
	for _, host := range hosts {
		if strings.TrimSpace(host) == "" {
			return cmdutil.OutputError(w, jsonOutput, apierr.InvalidArgument("host cannot be empty"))
		}
	}

	blocked, err := fetch(ctx, env)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	statuses := make([]HostStatus, 0, len(hosts))
	for _, host := range hosts {
		statuses = append(statuses, HostStatus{Host: host, Blocked: blocked.IsBlocked(host)})
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, statuses, "")
	}

	for _, s := range statuses {
		state := "not blocked"
		if s.Blocked {
			state = "blocked"
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", s.Host, state)
	}
	return nil
}

func runList(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput, showHashes bool) error {
	blocked, err := fetch(ctx, env)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	view := ListView{Count: blocked.Len()}
	if showHashes {
		view.Hashes = blocked.Hashes()
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, view, "")
	}

	if !showHashes {
		_, _ = fmt.Fprintf(w, "%d blocked server hashes\n", view.Count)
		return nil
	}
	for _, h := range view.Hashes {
		_, _ = fmt.Fprintln(w, h)
	}
	return nil
}
