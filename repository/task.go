package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskbot/domain"
)

// TaskFilter narrows List. An empty Owner matches every owner and a nil Completed
// matches both states.
type TaskFilter struct {
	Workspace string
	Owner     string
	Completed *bool
}

// AllTasks lists every task of the workspace, optionally for one owner.
func AllTasks(workspace, owner string) TaskFilter {
	return TaskFilter{Workspace: workspace, Owner: owner}
}

// IncompleteTasks lists the owner's tasks that are not completed.
func IncompleteTasks(workspace, owner string) TaskFilter {
	completed := false
	return TaskFilter{Workspace: workspace, Owner: owner, Completed: &completed}
}

// CompletedTasks lists the owner's completed tasks.
func CompletedTasks(workspace, owner string) TaskFilter {
	completed := true
	return TaskFilter{Workspace: workspace, Owner: owner, Completed: &completed}
}

// TaskRepository is the Task Store. Results are always in creation order; lookups
// scoped to unknown workspaces or owners return empty results rather than errors.
// Failures of the backing store are reported as domain errors with ErrCodeStore.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	FindByName(ctx context.Context, workspace, name string) ([]domain.Task, error)
	// GetActive returns nil without error when the owner has no active task.
	GetActive(ctx context.Context, workspace, owner string) (*domain.Task, error)
	// Add is a no-op returning false when the owner already has an open task with that name.
	Add(ctx context.Context, workspace, owner, name string) (bool, error)
	// Activate atomically makes the named open task the owner's only active one.
	Activate(ctx context.Context, workspace, owner, name string) error
	Complete(ctx context.Context, workspace, owner, name string) error
	Delete(ctx context.Context, workspace, owner, name string) error
	Clear(ctx context.Context, workspace string) (int64, error)
	ListOwners(ctx context.Context, workspace string) ([]string, error)
	ListWorkspaces(ctx context.Context) ([]string, error)
	PurgeOlderThan(ctx context.Context, workspace string, age time.Duration) (int64, error)
}
