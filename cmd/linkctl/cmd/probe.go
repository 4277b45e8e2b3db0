package cmd

import (
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jasim8799/api/internal/delivery"
)

var probeFailOnDown bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe every configured delivery provider once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		targets := cfg.ProbeTargets()
		if len(targets) == 0 {
			return errors.New("no delivery providers configured")
		}

		cache := delivery.NewHealthCache(targets, cfg.Delivery.CacheTTL, logger)
		status := cache.ForceRefresh(cmd.Context())

		ids := lo.Keys(status)
		slices.Sort(ids)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tSTATUS")
		for _, id := range ids {
			fmt.Fprintf(w, "%s\t%s\n", id, lo.Ternary(status[id], "up", "down"))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		down := lo.Filter(ids, func(id delivery.ProviderID, _ int) bool { return !status[id] })
		if probeFailOnDown && len(down) > 0 {
			return fmt.Errorf("%d provider(s) down: %v", len(down), down)
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeFailOnDown, "fail-on-down", false, "exit non-zero when any provider is down")
}
