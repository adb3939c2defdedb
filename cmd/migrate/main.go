package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/config"
	"github.com/pageza/recepti/backend/internal/database"
	"github.com/pageza/recepti/backend/internal/logging"
)

var (
	dsn    string
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the recipe schema",
	Long: `Runs the embedded SQL migrations against PostgreSQL.

The connection string comes from --dsn, or from DATABASE_URL and the DB_*
variables when the flag is not given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if dsn == "" {
			dsn = cfg.PostgresDSN()
		}
		logger, err = logging.New(cfg.LogLevel, cfg.Env.IsDevelopment())
		return err
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *database.Migrator) error {
			n, err := m.Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *database.Migrator) error {
			name, err := m.Rollback(cmd.Context())
			if errors.Is(err, database.ErrNothingToRollback) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s\n", name)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *database.Migrator) error {
			applied, err := m.Applied(cmd.Context())
			if err != nil {
				return err
			}
			done := make(map[string]bool, len(applied))
			for _, name := range applied {
				done[name] = true
			}

			all, err := database.Migrations()
			if err != nil {
				return err
			}
			for _, mig := range all {
				state := "pending"
				if done[mig.Name] {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", state, mig.Name)
			}
			return nil
		})
	},
}

func withMigrator(ctx context.Context, fn func(*database.Migrator) error) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return fn(database.NewMigrator(db, logger))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string")
	rootCmd.AddCommand(upCmd, rollbackCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
