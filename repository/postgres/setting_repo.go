package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

type settingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository instantiates a Postgres-backed settings repository.
func NewSettingRepository(pool *pgxpool.Pool) repository.SettingRepository {
	return &settingRepository{pool: pool}
}

func (r *settingRepository) Get(ctx context.Context, workspace, key string) (*domain.Setting, error) {
	const query = `
		SELECT workspace, key, value, updated_at
		FROM settings
		WHERE workspace = $1 AND key = $2
	`
	var s domain.Setting
	if err := r.pool.QueryRow(ctx, query, workspace, key).Scan(&s.Workspace, &s.Key, &s.Value, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get setting", err)
	}
	return &s, nil
}

func (r *settingRepository) Set(ctx context.Context, workspace, key, value string) error {
	const query = `
	INSERT INTO settings (workspace, key, value, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (workspace, key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, workspace, key, value); err != nil {
		return storeError("set setting", err)
	}
	return nil
}

func (r *settingRepository) Delete(ctx context.Context, workspace, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE workspace = $1 AND key = $2`, workspace, key); err != nil {
		return storeError("delete setting", err)
	}
	return nil
}

func (r *settingRepository) List(ctx context.Context, workspace string) ([]domain.Setting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT workspace, key, value, updated_at
		FROM settings
		WHERE workspace = $1
		ORDER BY key
	`, workspace)
	if err != nil {
		return nil, storeError("list settings", err)
	}
	defer rows.Close()

	settings := []domain.Setting{}
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Workspace, &s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, storeError("scan setting", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("read settings", err)
	}
	return settings, nil
}

func (r *settingRepository) Clear(ctx context.Context, workspace string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE workspace = $1`, workspace); err != nil {
		return storeError("clear settings", err)
	}
	return nil
}
