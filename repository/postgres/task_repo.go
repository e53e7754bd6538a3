package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

const taskColumns = `id, workspace, username, name, active, completed, created_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE workspace = $1
	  AND ($2 = '' OR username = $2)
	  AND ($3::boolean IS NULL OR completed = $3)
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, filter.Workspace, filter.Owner, filter.Completed)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return collectTasks(rows)
}

func (r *taskRepository) FindByName(ctx context.Context, workspace, name string) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE workspace = $1 AND name = $2
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, workspace, name)
	if err != nil {
		return nil, storeError("find task by name", err)
	}
	return collectTasks(rows)
}

func (r *taskRepository) GetActive(ctx context.Context, workspace, owner string) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE workspace = $1 AND username = $2 AND active AND NOT completed
	ORDER BY id
	LIMIT 1
	`
	task, err := scanTask(r.pool.QueryRow(ctx, query, workspace, owner))
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get active task", err)
	}
	return task, nil
}

func (r *taskRepository) Add(ctx context.Context, workspace, owner, name string) (bool, error) {
	// tasks_open_name_idx turns a duplicate open name into a silent no-op.
	const query = `
	INSERT INTO tasks (workspace, username, name, active, completed, created_at)
	VALUES ($1, $2, $3, false, false, NOW())
	ON CONFLICT DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, workspace, owner, name)
	if err != nil {
		return false, storeError("add task", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Activate(ctx context.Context, workspace, owner, name string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Serializes activations per owner even when the owner has no rows locked yet.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, workspace, owner); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRow(ctx, `
		SELECT id FROM tasks
		WHERE workspace = $1 AND username = $2 AND name = $3 AND NOT completed
		ORDER BY id
		LIMIT 1
		`, workspace, owner, name).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `
		UPDATE tasks SET active = false
		WHERE workspace = $1 AND username = $2 AND active AND id <> $3
		`, workspace, owner, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE tasks SET active = true WHERE id = $1`, id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		return storeError("activate task", err)
	}
	return nil
}

func (r *taskRepository) Complete(ctx context.Context, workspace, owner, name string) error {
	const query = `
	UPDATE tasks
	SET completed = true, active = false
	WHERE id = (
		SELECT id FROM tasks
		WHERE workspace = $1 AND username = $2 AND name = $3 AND NOT completed
		ORDER BY id
		LIMIT 1
	)
	`
	tag, err := r.pool.Exec(ctx, query, workspace, owner, name)
	if err != nil {
		return storeError("complete task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, workspace, owner, name string) error {
	const query = `
	DELETE FROM tasks
	WHERE id = (
		SELECT id FROM tasks
		WHERE workspace = $1 AND username = $2 AND name = $3 AND NOT completed
		ORDER BY id
		LIMIT 1
	)
	`
	tag, err := r.pool.Exec(ctx, query, workspace, owner, name)
	if err != nil {
		return storeError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Clear(ctx context.Context, workspace string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE workspace = $1`, workspace)
	if err != nil {
		return 0, storeError("clear tasks", err)
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) ListOwners(ctx context.Context, workspace string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
	SELECT DISTINCT username FROM tasks
	WHERE workspace = $1
	ORDER BY username COLLATE "C"
	`, workspace)
	if err != nil {
		return nil, storeError("list owners", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeError("list owners", err)
	}
	return owners, nil
}

func (r *taskRepository) ListWorkspaces(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT workspace FROM tasks ORDER BY workspace`)
	if err != nil {
		return nil, storeError("list workspaces", err)
	}
	workspaces, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeError("list workspaces", err)
	}
	return workspaces, nil
}

func (r *taskRepository) PurgeOlderThan(ctx context.Context, workspace string, age time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
	DELETE FROM tasks
	WHERE workspace = $1 AND created_at < $2
	`, workspace, cutoff(age))
	if err != nil {
		return 0, storeError("purge tasks", err)
	}
	return tag.RowsAffected(), nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storeError("scan task", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("read tasks", err)
	}
	return tasks, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Workspace,
		&task.Owner,
		&task.Name,
		&task.Active,
		&task.Completed,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
