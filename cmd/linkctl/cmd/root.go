// Package cmd implements the linkctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jasim8799/api/internal/config"
	"github.com/jasim8799/api/internal/utils"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "linkctl",
	Short: "Operator tool for catalog delivery links",
	Long: `linkctl encrypts and decrypts stored delivery link URLs, probes the
configured delivery providers and issues admin tokens for write routes.

It reads the same configuration as the API server (configs/app.yaml,
APP_ environment variables and .env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Only an explicit --config overrides CONFIG_FILE from the environment.
		var err error
		cmd.Flags().Visit(func(f *pflag.Flag) {
			if f.Name == "config" {
				err = os.Setenv("CONFIG_FILE", f.Value.String())
			}
		})
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/app.yaml)")

	rootCmd.AddCommand(encryptCmd, decryptCmd, probeCmd, tokenCmd, configCmd)
}

// loadConfig loads the configuration with a console logger for command output.
func loadConfig() (*config.Config, *utils.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.LoggerOptions()
	opts.Development = true
	opts.OutputPaths = []string{"stderr"}
	opts.File = nil
	return cfg, utils.NewLogger(opts), nil
}
