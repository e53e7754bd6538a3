package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskbot/usecase/maintenance"
)

func purgeCmd() *cobra.Command {
	var (
		workspace   string
		usePostgres bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete tasks older than each workspace's retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := openStores(ctx, cfg, usePostgres, zapLogger)
			if err != nil {
				return err
			}
			defer st.close()

			uc := maintenance.New(st.tasks, st.settings, cfg.Retention.Default, zapLogger)
			out := cmd.OutOrStdout()

			if workspace != "" {
				n, err := uc.PurgeWorkspace(ctx, workspace)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: purged %d\n", workspace, n)
				return nil
			}

			report, err := uc.PurgeAll(ctx)
			names := make([]string, 0, len(report.Purged))
			for ws := range report.Purged {
				names = append(names, ws)
			}
			sort.Strings(names)
			for _, ws := range names {
				fmt.Fprintf(out, "%s: purged %d\n", ws, report.Purged[ws])
			}
			fmt.Fprintf(out, "%d workspaces checked, %d tasks purged\n", report.Workspaces, report.Total())
			return err
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "only purge this workspace")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "use the Postgres task store instead of SQLite")
	return cmd
}
