// Package cli implements the nidhogg command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steviee/nidhogg/internal/cli/auth"
	"github.com/steviee/nidhogg/internal/cli/blocked"
	configcmd "github.com/steviee/nidhogg/internal/cli/config"
	"github.com/steviee/nidhogg/internal/cli/profile"
	"github.com/steviee/nidhogg/internal/cli/security"
	"github.com/steviee/nidhogg/internal/cli/skin"
	"github.com/steviee/nidhogg/internal/cli/stats"
	"github.com/steviee/nidhogg/internal/config"
)

var (
	// Global flags
	cfgFile string
	jsonOut bool
	quiet   bool
	verbose bool

	// Global logger
	logger *slog.Logger
)

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nidhogg",
		Short: "Talk to the Mojang account and authentication APIs",
		Long: `nidhogg is a CLI client for the Mojang web APIs.

It provides commands for:
  - Logging in and managing Yggdrasil sessions
  - Resolving player names, UUIDs and profiles
  - Securing the current IP with security questions
  - Changing, uploading and resetting skins
  - Querying sale statistics and the blocked server list

Sessions are stored in ~/.config/nidhogg/session.yaml with owner-only permissions.`,
		Example: `  # Log in (password from stdin)
  echo "$PASSWORD" | nidhogg auth login steve@example.com --password-stdin

  # Resolve a name to a UUID
  nidhogg profile uuid Notch

  # Show a profile with its skin
  nidhogg profile get 069a79f444e94726a5befca90e38aaf5

  # Answer the security questions for this IP
  nidhogg security answer

  # Check whether a server is blocked
  nidhogg blocked check mc.example.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize config
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			// Initialize logger based on flags and config
			if err := initLogger(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			if used := viper.ConfigFileUsed(); used != "" {
				logger.Debug("using config file", "path", used)
			}

			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/nidhogg/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("session-file", "", "session file (default: ~/.config/nidhogg/session.yaml)")

	// Mark json and quiet as mutually exclusive
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("session_file", rootCmd.PersistentFlags().Lookup("session-file"))

	// Add version command
	rootCmd.AddCommand(NewVersionCommand(version, commit, date, builtBy))

	// Add command groups
	rootCmd.AddCommand(auth.NewCommand())
	rootCmd.AddCommand(profile.NewCommand())
	rootCmd.AddCommand(security.NewCommand())
	rootCmd.AddCommand(skin.NewCommand())
	rootCmd.AddCommand(stats.NewCommand())
	rootCmd.AddCommand(blocked.NewCommand())
	rootCmd.AddCommand(configcmd.NewCommand())

	return rootCmd
}

// initLogger initializes the global logger based on flags
func initLogger() error {
	var level slog.Level
	var handler slog.Handler

	// Determine log level
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	default:
		if err := level.UnmarshalText([]byte(viper.GetString("logging.level"))); err != nil {
			level = slog.LevelInfo
		}
	}

	// Create handler based on output format
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if jsonOut {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := config.GetConfigDir()
		if err != nil {
			return err
		}

		// Search config in ~/.config/nidhogg directory
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, NIDHOGG_ENDPOINTS_API for endpoints.api
	viper.SetEnvPrefix("NIDHOGG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOut
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
