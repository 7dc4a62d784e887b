package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/internal/version"
)

// VersionInfo contains build information and the User-Agent sent to the
// API hosts.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	UserAgent string `json:"user_agent"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the build version, commit and date, and the User-Agent sent with every API request.",
		Example: `  # Display version information
  nidhogg version

  # Output in JSON format
  nidhogg version --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), version, commit, date, builtBy)
		},
	}

	return cmd
}

// printVersion prints version information in the appropriate format
func printVersion(w io.Writer, ver, commit, date, builtBy string) error {
	info := VersionInfo{
		Version:   ver,
		Commit:    commit,
		Date:      date,
		BuiltBy:   builtBy,
		UserAgent: version.UserAgent(),
	}

	if IsJSONOutput() {
		return cmdutil.WriteSuccess(w, info, "")
	}

	return printVersionText(w, info)
}

// printVersionText prints version information in human-readable format
func printVersionText(w io.Writer, info VersionInfo) error {
	if _, err := fmt.Fprintf(w, "nidhogg version %s\n", info.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Commit: %s\n", info.Commit); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built: %s\n", info.Date); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built by: %s\n", info.BuiltBy); err != nil {
		return fmt.Errorf("write built by: %w", err)
	}
	if _, err := fmt.Fprintf(w, "User-Agent: %s\n", info.UserAgent); err != nil {
		return fmt.Errorf("write user agent: %w", err)
	}

	return nil
}
