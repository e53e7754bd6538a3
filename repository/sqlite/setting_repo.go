package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository returns a SQLite-backed SettingRepository.
func NewSettingRepository(db *sql.DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, workspace, key string) (*domain.Setting, error) {
	var (
		s       domain.Setting
		updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT workspace, key, value, updated_at
		FROM settings
		WHERE workspace = ? AND key = ?`, workspace, key).Scan(&s.Workspace, &s.Key, &s.Value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get setting", err)
	}
	s.UpdatedAt = time.Unix(0, updated).UTC()
	return &s, nil
}

func (r *settingRepository) Set(ctx context.Context, workspace, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (workspace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (workspace, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`,
		workspace, key, value, time.Now().UTC().UnixNano())
	if err != nil {
		return storeError("set setting", err)
	}
	return nil
}

func (r *settingRepository) Delete(ctx context.Context, workspace, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE workspace = ? AND key = ?`, workspace, key); err != nil {
		return storeError("delete setting", err)
	}
	return nil
}

func (r *settingRepository) List(ctx context.Context, workspace string) ([]domain.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT workspace, key, value, updated_at
		FROM settings
		WHERE workspace = ?
		ORDER BY key`, workspace)
	if err != nil {
		return nil, storeError("list settings", err)
	}
	defer rows.Close()

	settings := []domain.Setting{}
	for rows.Next() {
		var (
			s       domain.Setting
			updated int64
		)
		if err := rows.Scan(&s.Workspace, &s.Key, &s.Value, &updated); err != nil {
			return nil, storeError("scan setting", err)
		}
		s.UpdatedAt = time.Unix(0, updated).UTC()
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("read settings", err)
	}
	return settings, nil
}

func (r *settingRepository) Clear(ctx context.Context, workspace string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE workspace = ?`, workspace); err != nil {
		return storeError("clear settings", err)
	}
	return nil
}
