package repository

import (
	"context"

	"github.com/fastygo/taskbot/domain"
)

// SettingRepository stores workspace-level configuration.
type SettingRepository interface {
	// Get returns nil without error when the key is not set.
	Get(ctx context.Context, workspace, key string) (*domain.Setting, error)
	Set(ctx context.Context, workspace, key, value string) error
	Delete(ctx context.Context, workspace, key string) error
	List(ctx context.Context, workspace string) ([]domain.Setting, error)
	Clear(ctx context.Context, workspace string) error
}
