package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskbot/usecase/importer"
)

func importCmd() *cobra.Command {
	var (
		workspace   string
		file        string
		usePostgres bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a legacy tasks.json export into a workspace",
		Long: `Reads {"username": [{"name": ..., "completed": ..., "active": ...}]} and adds
every task through the task store. Tasks that already exist are skipped.

Examples:
  taskbot import --workspace standup --file tasks.json --postgres`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				return errors.New("--workspace is required")
			}
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := importer.Decode(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := openStores(ctx, cfg, usePostgres, zapLogger)
			if err != nil {
				return err
			}
			defer st.close()

			res, err := importer.New(st.tasks, zapLogger).Import(ctx, workspace, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d, completed %d, activated %d\n",
				res.Added, res.Skipped, res.Completed, res.Activated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "target workspace")
	cmd.Flags().StringVarP(&file, "file", "f", "tasks.json", "export file to read")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "use the Postgres task store instead of SQLite")
	return cmd
}
