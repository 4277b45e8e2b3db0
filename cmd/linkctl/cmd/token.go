package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasim8799/api/internal/auth"
)

var tokenFlags struct {
	subject  string
	roles    []string
	duration time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the admin write routes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is not configured; write routes only need the API key")
		}

		duration := cfg.Auth.TokenExpiry
		if cmd.Flags().Changed("duration") {
			duration = tokenFlags.duration
		}

		provider := auth.NewJWTProvider(auth.JWTConfig{
			Secret:        cfg.Auth.JWTSecret,
			Issuer:        cfg.Auth.Issuer,
			TokenDuration: duration,
		}, logger)

		token, err := provider.GenerateToken(tokenFlags.subject, tokenFlags.roles)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.subject, "subject", "operator", "token subject")
	tokenCmd.Flags().StringSliceVar(&tokenFlags.roles, "role", []string{auth.RoleAdmin}, "roles to grant")
	tokenCmd.Flags().DurationVar(&tokenFlags.duration, "duration", 12*time.Hour, "token lifetime (default from configuration)")
}
