package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/usecase"
	taskUC "github.com/fastygo/taskbot/usecase/task"
)

func replCmd() *cobra.Command {
	var (
		workspace   string
		user        string
		usePostgres bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type commands on stdin as a privileged user",
		Long: `Reads one message per line from stdin and prints the bot's replies.

Examples:
  taskbot repl
  taskbot repl --workspace standup --user alice --postgres`,
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

			uc := taskUC.New(st.tasks, st.settings, zapLogger,
				taskUC.WithPrefix(cfg.Commands.Prefix),
				taskUC.WithOwnerScopedLookup(cfg.Commands.OwnerScopedLookup),
				taskUC.WithDefaultRetention(cfg.Retention.Default),
			)
			return runREPL(ctx, uc, cmd.InOrStdin(), cmd.OutOrStdout(), workspace, user, zapLogger)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "test", "workspace to act in")
	cmd.Flags().StringVarP(&user, "user", "u", "SpaceMonkey", "user issuing the commands")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "use the Postgres task store instead of SQLite")

	return cmd
}

type commandHandler interface {
	Handle(ctx context.Context, req taskUC.Request, sink usecase.ReplySink) (*taskUC.Response, error)
}

func runREPL(ctx context.Context, h commandHandler, in io.Reader, out io.Writer, workspace, user string, log *zap.Logger) error {
	sink := usecase.ReplyFunc(func(_ context.Context, text string) error {
		_, err := fmt.Fprintln(out, text)
		return err
	})

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := taskUC.Request{
			Workspace:  workspace,
			User:       user,
			Text:       scanner.Text(),
			Privileged: true,
		}
		if _, err := h.Handle(ctx, req, sink); err != nil {
			// Store failures are already logged; keep the session alive.
			log.Debug("command not processed", zap.Error(err))
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
