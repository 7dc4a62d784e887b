package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

// NewCommand creates the stats command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Query sale statistics",
		Long:  `Query the public sale statistics of Mojang games.`,
		Example: `  # Minecraft sales
  nidhogg stats sales

  # Every game
  nidhogg stats sales --group all

  # Specific metric keys
  nidhogg stats sales --metric item_sold_minecraft --metric prepaid_card_redeemed_minecraft`,
	}

	cmd.AddCommand(NewSalesCommand())

	return cmd
}

// NewSalesCommand creates the stats sales command.
func NewSalesCommand() *cobra.Command {
	var (
		group   string
		metrics []string
	)

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Show aggregated sales",
		Long: fmt.Sprintf(`Show total sales, sales in the last 24 hours and the current sale
velocity for a group of metric keys (%s) or explicit --metric keys.`, strings.Join(groupNames(), ", ")),
		Example: `  nidhogg stats sales --group dungeons`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			keys, err := resolveKeys(group, metrics)
			if err != nil {
				return cmdutil.OutputError(cmd.OutOrStdout(), cmdutil.IsJSONOutput(), err)
			}
			return runSales(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), keys)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "minecraft", "Metric group")
	cmd.Flags().StringSliceVarP(&metrics, "metric", "m", nil, "Metric key (overrides --group)")

	return cmd
}

func groupNames() []string {
	names := make([]string, 0, len(data.MetricGroups))
	for name := range data.MetricGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveKeys turns the flags into metric keys. Explicit keys win.
func resolveKeys(group string, metrics []string) ([]data.MetricKey, error) {
	if len(metrics) > 0 {
		keys := make([]data.MetricKey, 0, len(metrics))
		for _, m := range metrics {
			keys = append(keys, data.MetricKey(strings.TrimSpace(m)))
		}
		return keys, nil
	}

	keys, ok := data.MetricGroups[strings.ToLower(group)]
	if !ok {
		return nil, apierr.InvalidArgument("unknown metric group %q (must be one of %s)", group, strings.Join(groupNames(), ", "))
	}
	return keys, nil
}

func runSales(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, keys []data.MetricKey) error {
	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	metrics, err := client.GetSaleStatistics(ctx, keys)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, metrics, "")
	}

	_, _ = fmt.Fprintf(w, "Total:         %d\n", metrics.Total)
	_, _ = fmt.Fprintf(w, "Last 24 hours: %d\n", metrics.Last24h)
	_, _ = fmt.Fprintf(w, "Per second:    %.2f\n", metrics.SaleVelocityPerSeconds)
	return nil
}
