package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	appconfig "github.com/steviee/nidhogg/internal/config"
)

// NewCommand creates the config command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and reset nidhogg configuration settings.

Configuration is stored in ~/.config/nidhogg/config.yaml by default.
Any value can be overridden with an environment variable such as
NIDHOGG_ENDPOINTS_API or NIDHOGG_HTTP_TIMEOUT.`,
		Example: `  # View the effective configuration
  nidhogg config show

  # Reset to defaults, keeping the client token
  nidhogg config reset

  # Show configuration file path
  nidhogg config path`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewPathCommand())
	cmd.AddCommand(NewResetCommand())

	return cmd
}

// NewShowCommand creates the config show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runShow(cmd.OutOrStdout(), env.Config, cmdutil.IsJSONOutput())
		},
	}
}

// NewPathCommand creates the config path command.
func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration and session file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			path, err := cmdutil.ConfigPath()
			if err != nil {
				return err
			}
			return runPath(cmd.OutOrStdout(), path, env.SessionPath, cmdutil.IsJSONOutput())
		},
	}
}

// NewResetCommand creates the config reset command.
func NewResetCommand() *cobra.Command {
	var newToken bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the configuration to defaults",
		Long: `Overwrite the configuration file with defaults.

The client token is kept so the stored session stays refreshable,
unless --new-client-token is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmdutil.ConfigPath()
			if err != nil {
				return err
			}
			return runReset(cmd.OutOrStdout(), path, newToken, cmdutil.IsJSONOutput())
		},
	}

	cmd.Flags().BoolVar(&newToken, "new-client-token", false, "Generate a new client token")

	return cmd
}

func runShow(w io.Writer, cfg *appconfig.Config, jsonOutput bool) error {
	if jsonOutput {
		return cmdutil.WriteSuccess(w, cfg, "")
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// PathView is the JSON form of config path.
type PathView struct {
	Config  string `json:"config"`
	Session string `json:"session"`
}

func runPath(w io.Writer, configPath, sessionPath string, jsonOutput bool) error {
	if jsonOutput {
		return cmdutil.WriteSuccess(w, PathView{Config: configPath, Session: sessionPath}, "")
	}

	_, _ = fmt.Fprintf(w, "Config:  %s\n", configPath)
	_, _ = fmt.Fprintf(w, "Session: %s\n", sessionPath)
	return nil
}

func runReset(w io.Writer, path string, newToken, jsonOutput bool) error {
	cfg := appconfig.DefaultConfig()
	if !newToken {
		// A corrupted file is replaced by LoadConfig, which is what reset does anyway.
		if old, err := appconfig.LoadConfig(path); err == nil {
			cfg.Auth.ClientToken = old.Auth.ClientToken
		}
	}

	if err := appconfig.SaveConfig(path, cfg); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, cfg, "configuration reset")
	}
	_, _ = fmt.Fprintf(w, "Configuration reset: %s\n", path)
	return nil
}
