// Package maintenance removes tasks older than each workspace's retention.
package maintenance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskbot/pkg/telemetry"
	"github.com/fastygo/taskbot/repository"
	"github.com/fastygo/taskbot/usecase"
)

// Report summarizes a purge run.
type Report struct {
	Workspaces int
	Purged     map[string]int64
}

// Total returns the number of tasks removed across workspaces.
func (r Report) Total() int64 {
	var total int64
	for _, n := range r.Purged {
		total += n
	}
	return total
}

type UseCase struct {
	tasks            repository.TaskRepository
	settings         repository.SettingRepository
	defaultRetention time.Duration
	logger           *zap.Logger
}

// New creates the maintenance use case. defaultRetention applies to workspaces without
// a retention setting; zero disables purging for them.
func New(tasks repository.TaskRepository, settings repository.SettingRepository, defaultRetention time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:            tasks,
		settings:         settings,
		defaultRetention: defaultRetention,
		logger:           logger,
	}
}

// PurgeWorkspace deletes the workspace's tasks older than its retention.
func (uc *UseCase) PurgeWorkspace(ctx context.Context, workspace string) (int64, error) {
	retention, err := usecase.WorkspaceRetention(ctx, uc.settings, workspace, uc.defaultRetention, uc.logger)
	if err != nil {
		return 0, err
	}
	if retention <= 0 {
		return 0, nil
	}

	purged, err := uc.tasks.PurgeOlderThan(ctx, workspace, retention)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		telemetry.PurgedTasksTotal.WithLabelValues(workspace).Add(float64(purged))
		uc.logger.Info("purged old tasks",
			zap.String("workspace", workspace),
			zap.Duration("retention", retention),
			zap.Int64("count", purged))
	}
	return purged, nil
}

// PurgeAll runs PurgeWorkspace for every workspace that has tasks. A failing workspace
// does not stop the others; their errors are joined.
func (uc *UseCase) PurgeAll(ctx context.Context) (Report, error) {
	report := Report{Purged: map[string]int64{}}

	workspaces, err := uc.tasks.ListWorkspaces(ctx)
	if err != nil {
		return report, err
	}
	report.Workspaces = len(workspaces)

	var result error
	for _, ws := range workspaces {
		if err := ctx.Err(); err != nil {
			return report, errors.Join(result, err)
		}
		n, err := uc.PurgeWorkspace(ctx, ws)
		if err != nil {
			uc.logger.Error("workspace purge failed", zap.String("workspace", ws), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		if n > 0 {
			report.Purged[ws] = n
		}
	}
	return report, result
}
