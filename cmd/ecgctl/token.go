package main

import (
	"fmt"
	"time"

	"ecg-academy/internal/logger"
	"ecg-academy/internal/service"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		uid   string
		role  string
		ttl   time.Duration
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with auth.jwt_secret (local development)",
		RunE: func(cmd *cobra.Command, args []string) error {
			authService, err := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger.Get())
			if err != nil {
				return err
			}
			if admin {
				role = cfg.Auth.AdminRole
			}
			token, err := authService.CreateJWT(cmd.Context(), uid, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "user ID claim")
	cmd.Flags().StringVar(&role, "role", "", "role claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "use auth.admin_role as the role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
