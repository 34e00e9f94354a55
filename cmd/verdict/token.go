package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/security/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for a user",
	Long: `Sign an HS256 bearer token for user-id with the configured
security.authentication.jwt_secret. Meant for local testing against a
running server.

Examples:
  verdict token user-1 --config config.yaml
  verdict token user-1 --ttl 15m`,
	Args: cobra.ExactArgs(1),
	RunE: issueToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}

func issueToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if err := resolveSecrets(cmd.Context(), cfg); err != nil {
		return err
	}

	token, err := mintToken(cfg.Security.Authentication.JWTSecret, args[0], tokenTTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func mintToken(secret, user string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", cli.NewConfigError("security.authentication.jwt_secret", "no secret configured")
	}
	if ttl <= 0 {
		return "", cli.NewCommandError("token", fmt.Errorf("ttl must be positive, got %v", ttl))
	}
	return auth.Sign(secret, auth.Claims{
		Subject:   user,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
}
