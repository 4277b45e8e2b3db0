package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasim8799/api/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configInitDir string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.WriteDefaultConfig(configInitDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s/app.yaml (existing files are kept)\n", configInitDir)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		warnings := config.ValidateAndFixConfig(cfg)
		for _, w := range warnings {
			fmt.Fprintln(cmd.OutOrStdout(), "warning:", w)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (%d provider(s), policy %s)\n", len(cfg.Delivery.Providers), cfg.Delivery.Policy)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitDir, "dir", "configs", "directory to write app.yaml into")
	configCmd.AddCommand(configInitCmd, configCheckCmd)
}
