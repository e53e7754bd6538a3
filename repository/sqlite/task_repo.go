package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

const taskColumns = `id, workspace, username, name, active, completed, created_at`

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed TaskRepository over a database from Open.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	completed := nullBool(filter.Completed)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE workspace = ?
		  AND (? = '' OR username = ?)
		  AND (? IS NULL OR completed = ?)
		ORDER BY id`,
		filter.Workspace, filter.Owner, filter.Owner, completed, completed,
	)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return collectTasks(rows)
}

func (r *taskRepository) FindByName(ctx context.Context, workspace, name string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE workspace = ? AND name = ?
		ORDER BY id`, workspace, name)
	if err != nil {
		return nil, storeError("find task by name", err)
	}
	return collectTasks(rows)
}

func (r *taskRepository) GetActive(ctx context.Context, workspace, owner string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE workspace = ? AND username = ? AND active = 1 AND completed = 0
		ORDER BY id
		LIMIT 1`, workspace, owner)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get active task", err)
	}
	return task, nil
}

func (r *taskRepository) Add(ctx context.Context, workspace, owner, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO tasks (workspace, username, name, active, completed, created_at)
		VALUES (?, ?, ?, 0, 0, ?)`,
		workspace, owner, name, time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return false, storeError("add task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError("add task", err)
	}
	return n > 0, nil
}

func (r *taskRepository) Activate(ctx context.Context, workspace, owner, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("activate task", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM tasks
		WHERE workspace = ? AND username = ? AND name = ? AND completed = 0
		ORDER BY id
		LIMIT 1`, workspace, owner, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTaskNotFound
	}
	if err != nil {
		return storeError("activate task", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET active = 0
		WHERE workspace = ? AND username = ? AND active = 1 AND id <> ?`,
		workspace, owner, id); err != nil {
		return storeError("activate task", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET active = 1 WHERE id = ?`, id); err != nil {
		return storeError("activate task", err)
	}
	if err := tx.Commit(); err != nil {
		return storeError("activate task", err)
	}
	return nil
}

func (r *taskRepository) Complete(ctx context.Context, workspace, owner, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET completed = 1, active = 0
		WHERE id = (
			SELECT id FROM tasks
			WHERE workspace = ? AND username = ? AND name = ? AND completed = 0
			ORDER BY id
			LIMIT 1
		)`, workspace, owner, name)
	if err != nil {
		return storeError("complete task", err)
	}
	return requireAffected(res, "complete task")
}

func (r *taskRepository) Delete(ctx context.Context, workspace, owner, name string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE id = (
			SELECT id FROM tasks
			WHERE workspace = ? AND username = ? AND name = ? AND completed = 0
			ORDER BY id
			LIMIT 1
		)`, workspace, owner, name)
	if err != nil {
		return storeError("delete task", err)
	}
	return requireAffected(res, "delete task")
}

func (r *taskRepository) Clear(ctx context.Context, workspace string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE workspace = ?`, workspace)
	if err != nil {
		return 0, storeError("clear tasks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("clear tasks", err)
	}
	return n, nil
}

func (r *taskRepository) ListOwners(ctx context.Context, workspace string) ([]string, error) {
	return r.strings(ctx, "list owners", `
		SELECT DISTINCT username FROM tasks
		WHERE workspace = ?
		ORDER BY username`, workspace)
}

func (r *taskRepository) ListWorkspaces(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "list workspaces", `SELECT DISTINCT workspace FROM tasks ORDER BY workspace`)
}

func (r *taskRepository) PurgeOlderThan(ctx context.Context, workspace string, age time.Duration) (int64, error) {
	before := time.Now().UTC().Add(-age).UnixNano()
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE workspace = ? AND created_at < ?`, workspace, before)
	if err != nil {
		return 0, storeError("purge tasks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("purge tasks", err)
	}
	return n, nil
}

func (r *taskRepository) strings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storeError(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return out, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
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
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task    domain.Task
		created int64
	)
	if err := row.Scan(
		&task.ID,
		&task.Workspace,
		&task.Owner,
		&task.Name,
		&task.Active,
		&task.Completed,
		&created,
	); err != nil {
		return nil, err
	}
	task.CreatedAt = time.Unix(0, created).UTC()
	return &task, nil
}
