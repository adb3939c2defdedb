package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/recepti/backend/config"
	"github.com/pageza/recepti/backend/internal/service"
)

var (
	subject string
	ttl     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "admin_token",
	Short: "Issue an admin bearer token for the write routes",
	Long: `Signs an HS256 token with role=admin using ADMIN_JWT_SECRET.

Send it as "Authorization: Bearer <token>" on POST, PUT and DELETE requests.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return errors.New("ADMIN_JWT_SECRET is not set")
		}

		token, err := service.NewTokenService(cfg.AdminJWTSecret).GenerateAdminToken(subject, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	rootCmd.Flags().DurationVar(&ttl, "ttl", service.DefaultTokenTTL, "token lifetime")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
