package skin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/mojang"
)

// NewCommand creates the skin command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skin",
		Short: "Change, upload or reset the account skin",
		Long: `Manage the skin of the profile of the stored session.

The current IP must be secured, see 'nidhogg security'.`,
		Example: `  # Use a skin hosted elsewhere
  nidhogg skin change https://example.com/skin.png

  # Upload a slim skin
  nidhogg skin upload ./alex.png --slim

  # Go back to the default skin
  nidhogg skin reset`,
		Aliases: []string{"skins"},
	}

	// Add subcommands
	cmd.AddCommand(NewChangeCommand())
	cmd.AddCommand(NewUploadCommand())
	cmd.AddCommand(NewResetCommand())

	return cmd
}

// NewChangeCommand creates the skin change command.
func NewChangeCommand() *cobra.Command {
	var slim bool

	cmd := &cobra.Command{
		Use:     "change <url>",
		Short:   "Set the skin from a URL",
		Long:    `Set the skin to the PNG at an http or https URL.`,
		Example: `  nidhogg skin change https://example.com/skin.png --slim`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runChange(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args[0], slim)
		},
	}

	cmd.Flags().BoolVar(&slim, "slim", false, "Use the slim (alex) model")

	return cmd
}

func runChange(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, url string, slim bool) error {
	return withClient(w, env, jsonOutput, func(client *mojang.Client) error {
		session, err := env.Session()
		if err != nil {
			return err
		}
		return client.ChangeSkin(ctx, session, url, slim)
	}, "Skin changed")
}

// NewUploadCommand creates the skin upload command.
func NewUploadCommand() *cobra.Command {
	var slim bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a skin PNG",
		Long: fmt.Sprintf(`Upload a skin from a local PNG file of at most %s.`,
			units.BytesSize(float64(mojang.MaxSkinSize))),
		Example: `  nidhogg skin upload ./steve.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runUpload(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args[0], slim)
		},
	}

	cmd.Flags().BoolVar(&slim, "slim", false, "Use the slim (alex) model")

	return cmd
}

// readSkin reads the skin file, refusing files that are too large to upload.
func readSkin(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skin: %w", err)
	}
	if info.IsDir() {
		return nil, apierr.InvalidArgument("%s is a directory", path)
	}
	if info.Size() > int64(mojang.MaxSkinSize) {
		return nil, apierr.InvalidArgument("skin file is %s, the limit is %s",
			units.BytesSize(float64(info.Size())), units.BytesSize(float64(mojang.MaxSkinSize)))
	}

	png, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skin: %w", err)
	}
	return png, nil
}

func runUpload(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, path string, slim bool) error {
	png, err := readSkin(path)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	return withClient(w, env, jsonOutput, func(client *mojang.Client) error {
		session, err := env.Session()
		if err != nil {
			return err
		}
		return client.UploadSkin(ctx, session, png, slim)
	}, "Skin uploaded")
}

// NewResetCommand creates the skin reset command.
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Reset to the default skin",
		Long:    `Remove the custom skin of the profile.`,
		Example: `  nidhogg skin reset`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runReset(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
		},
	}
}

func runReset(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	return withClient(w, env, jsonOutput, func(client *mojang.Client) error {
		session, err := env.Session()
		if err != nil {
			return err
		}
		return client.ResetSkin(ctx, session)
	}, "Skin reset")
}

// withClient runs op with a fresh client and reports its outcome.
func withClient(w io.Writer, env *cmdutil.Env, jsonOutput bool, op func(*mojang.Client) error, done string) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	if err := op(client); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, nil, done)
	}
	_, _ = fmt.Fprintln(w, done)
	return nil
}
