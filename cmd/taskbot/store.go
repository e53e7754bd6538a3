package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/internal/config"
	pgInfra "github.com/fastygo/taskbot/internal/infrastructure/postgres"
	"github.com/fastygo/taskbot/repository"
	"github.com/fastygo/taskbot/repository/postgres"
	"github.com/fastygo/taskbot/repository/sqlite"
)

// stores bundles the Task Store and settings of one backend.
type stores struct {
	tasks    repository.TaskRepository
	settings repository.SettingRepository
	pool     *pgxpool.Pool
	close    func() error
}

// openStores connects to Postgres (running pending migrations first) or opens the
// embedded SQLite file.
func openStores(ctx context.Context, cfg *config.Config, usePostgres bool, log *zap.Logger) (*stores, error) {
	if !usePostgres {
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite task store", zap.String("path", cfg.SQLite.Path))
		return &stores{
			tasks:    sqlite.NewTaskRepository(db),
			settings: sqlite.NewSettingRepository(db),
			close:    db.Close,
		}, nil
	}

	if err := pgInfra.RunMigrations(cfg, log); err != nil {
		return nil, errors.Join(errors.New("migrations failed"), err)
	}
	pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName, log)
	if err != nil {
		return nil, err
	}
	return &stores{
		tasks:    postgres.NewTaskRepository(pool),
		settings: postgres.NewSettingRepository(pool),
		pool:     pool,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}
