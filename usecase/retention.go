package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

// WorkspaceRetention returns the workspace's retention setting, or fallback when it is
// unset. An unparsable stored value is logged and treated as unset.
func WorkspaceRetention(ctx context.Context, settings repository.SettingRepository, workspace string, fallback time.Duration, logger *zap.Logger) (time.Duration, error) {
	if settings == nil {
		return fallback, nil
	}
	setting, err := settings.Get(ctx, workspace, domain.SettingRetention)
	if err != nil {
		return 0, err
	}
	if setting == nil {
		return fallback, nil
	}
	retention, err := domain.ParseRetention(setting.Value)
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring invalid retention setting",
				zap.String("workspace", workspace),
				zap.String("value", setting.Value))
		}
		return fallback, nil
	}
	return retention, nil
}
