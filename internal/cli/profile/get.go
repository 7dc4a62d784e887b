package profile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/data"
)

// NewGetCommand creates the profile get command.
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <uuid>",
		Short: "Show a profile with its skin and cape",
		Long: `Fetch a profile from the session server and decode its textures
property.`,
		Example: `  # Show a profile
  nidhogg profile get 069a79f444e94726a5befca90e38aaf5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runGet(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), args[0])
		},
	}

	return cmd
}

// ProfileView is the printable form of a profile with decoded textures.
type ProfileView struct {
	ID        string         `json:"id"`
	UUID      string         `json:"uuid"`
	Name      string         `json:"name"`
	Legacy    bool           `json:"legacy,omitempty"`
	Textures  *data.Textures `json:"textures,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// newProfileView decodes the textures of p. A profile without a textures
// property is not an error.
func newProfileView(p *data.ProfileWithTextures) ProfileView {
	view := ProfileView{
		ID:     p.ID,
		UUID:   data.FormatUUID(p.ID),
		Name:   p.Name,
		Legacy: p.Legacy,
	}

	textures, err := p.Textures.Get()
	switch {
	case err == nil:
		view.Textures = &textures.Textures
		view.Timestamp = textures.Timestamp
	case !errors.Is(err, data.ErrPropertyNotFound):
		view.Error = err.Error()
	}
	return view
}

func runGet(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, id string) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	profile, err := client.GetProfile(ctx, id)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	view := newProfileView(profile)
	if jsonOutput {
		return cmdutil.WriteSuccess(w, view, "")
	}

	printProfile(w, view)
	return nil
}

func printProfile(w io.Writer, view ProfileView) {
	_, _ = fmt.Fprintf(w, "Name:  %s\n", view.Name)
	_, _ = fmt.Fprintf(w, "UUID:  %s\n", view.UUID)
	if view.Legacy {
		_, _ = fmt.Fprintln(w, "Legacy: yes")
	}

	switch {
	case view.Error != "":
		_, _ = fmt.Fprintf(w, "Textures: %s\n", view.Error)
	case view.Textures == nil:
		_, _ = fmt.Fprintln(w, "Textures: none")
	default:
		if skin := view.Textures.Skin; skin != nil {
			model := "classic"
			if skin.Slim() {
				model = "slim"
			}
			_, _ = fmt.Fprintf(w, "Skin:  %s (%s)\n", skin.URL, model)
		} else {
			_, _ = fmt.Fprintln(w, "Skin:  default")
		}
		if cape := view.Textures.Cape; cape != nil {
			_, _ = fmt.Fprintf(w, "Cape:  %s\n", cape.URL)
		}
	}
}
