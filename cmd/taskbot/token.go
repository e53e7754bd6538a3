package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/fastygo/taskbot/internal/middleware"
)

func tokenCmd() *cobra.Command {
	var (
		workspace string
		user      string
		role      string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a chat adapter calling the webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" || user == "" {
				return errors.New("--workspace and --user are required")
			}
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			now := time.Now()
			claims := middleware.Claims{
				UserID:    user,
				Workspace: workspace,
				Role:      role,
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:   cfg.JWT.Issuer,
					IssuedAt: jwt.NewNumericDate(now),
				},
			}
			if ttl > 0 {
				claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
			}

			token, err := middleware.IssueToken(cfg.JWT.Secret, claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace claim")
	cmd.Flags().StringVarP(&user, "user", "u", "", "user_id claim")
	cmd.Flags().StringVar(&role, "role", "", "role claim (moderator or admin are privileged)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
