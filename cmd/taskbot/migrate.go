package main

import (
	"github.com/spf13/cobra"

	pgInfra "github.com/fastygo/taskbot/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back Postgres schema migrations",
		Long: `Applies pending migrations from MIGRATIONS_PATH.

Examples:
  taskbot migrate
  taskbot migrate --down 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			if down > 0 {
				return pgInfra.Rollback(cfg, down, zapLogger)
			}
			cfg.Migrations.Enabled = true
			return pgInfra.RunMigrations(cfg, zapLogger)
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to roll back")
	return cmd
}
