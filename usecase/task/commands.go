package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
	"github.com/fastygo/taskbot/usecase"
)

func (uc *UseCase) showHelp(_ context.Context, _ usecase.Command) (string, error) {
	return strings.TrimSpace(uc.help), nil
}

func (uc *UseCase) addTask(ctx context.Context, cmd usecase.Command) (string, error) {
	name := cmd.Args
	if name == "" {
		return "", domain.ErrEmptyTaskName
	}
	if _, err := uc.tasks.Add(ctx, cmd.Workspace, cmd.User, name); err != nil {
		return "", err
	}

	active, err := uc.tasks.GetActive(ctx, cmd.Workspace, cmd.User)
	if err != nil {
		return "", err
	}
	if active == nil {
		if err := uc.activate(ctx, cmd, name); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Added your new task: %s\n%s", name, uc.pick(encouragements)), nil
}

func (uc *UseCase) startTask(ctx context.Context, cmd usecase.Command) (string, error) {
	if cmd.Args == "" {
		return "", domain.ErrEmptyTaskName
	}

	name, err := uc.resolve(ctx, cmd, cmd.Args)
	if err != nil {
		return "", err
	}
	if name != "" {
		err := uc.tasks.Activate(ctx, cmd.Workspace, cmd.User, name)
		if err == nil {
			return "Started task: " + name, nil
		}
		// A workspace-wide match may belong to someone else; the issuer then starts their own.
		if !errors.Is(err, domain.ErrTaskNotFound) {
			return "", err
		}
	}

	name = cmd.Args
	if _, err := uc.tasks.Add(ctx, cmd.Workspace, cmd.User, name); err != nil {
		return "", err
	}
	if err := uc.activate(ctx, cmd, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Started your new task: %s\n%s", name, uc.pick(encouragements)), nil
}

func (uc *UseCase) currentTask(ctx context.Context, cmd usecase.Command) (string, error) {
	active, err := uc.tasks.GetActive(ctx, cmd.Workspace, cmd.User)
	if err != nil {
		return "", err
	}
	if active == nil {
		return "", domain.ErrNoActiveTask
	}
	return "Your active task is: " + active.Name, nil
}

func (uc *UseCase) completeTask(ctx context.Context, cmd usecase.Command) (string, error) {
	active, err := uc.tasks.GetActive(ctx, cmd.Workspace, cmd.User)
	if err != nil {
		return "", err
	}
	if active == nil {
		return "", domain.ErrNoActiveTask
	}
	if err := uc.tasks.Complete(ctx, cmd.Workspace, cmd.User, active.Name); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return "", domain.ErrNoActiveTask
		}
		return "", err
	}

	msg := fmt.Sprintf("Completed task: %s\n%s", active.Name, uc.pick(congratulations))
	next, err := uc.activateEarliest(ctx, cmd)
	if err != nil {
		return "", err
	}
	if next != "" {
		msg += fmt.Sprintf("\nNext up: %s!", next)
	}
	return msg, nil
}

func (uc *UseCase) cancelTask(ctx context.Context, cmd usecase.Command) (string, error) {
	active, err := uc.tasks.GetActive(ctx, cmd.Workspace, cmd.User)
	if err != nil {
		return "", err
	}

	var name string
	if cmd.Args == "" {
		if active == nil {
			return "", domain.ErrNoActiveTask
		}
		name = active.Name
	} else {
		name, err = uc.resolve(ctx, cmd, cmd.Args)
		if err != nil {
			return "", err
		}
		if name == "" {
			return "", domain.TaskNotFound(cmd.Args)
		}
	}

	if err := uc.tasks.Delete(ctx, cmd.Workspace, cmd.User, name); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return "", domain.TaskNotFound(name)
		}
		return "", err
	}

	msg := "Canceled task: " + name
	// Only one open task per name exists, so a name match means the active task went away.
	if active != nil && active.Name == name {
		next, err := uc.activateEarliest(ctx, cmd)
		if err != nil {
			return "", err
		}
		if next != "" {
			msg += fmt.Sprintf("\nNext up: %s!", next)
		}
	}
	return msg, nil
}

func (uc *UseCase) advanceTask(ctx context.Context, cmd usecase.Command) (string, error) {
	tasks, err := uc.tasks.List(ctx, repository.IncompleteTasks(cmd.Workspace, cmd.User))
	if err != nil {
		return "", err
	}

	idx := -1
	for i, t := range tasks {
		if t.Active {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", domain.ErrNoActiveTask
	}

	current := tasks[idx]
	if len(tasks) > 1 {
		current = tasks[(idx+1)%len(tasks)]
		if err := uc.activate(ctx, cmd, current.Name); err != nil {
			return "", err
		}
	}
	return "Your active task is: " + current.Name, nil
}

func (uc *UseCase) listMine(ctx context.Context, cmd usecase.Command) (string, error) {
	tasks, err := uc.tasks.List(ctx, repository.IncompleteTasks(cmd.Workspace, cmd.User))
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return noTasksFound, nil
	}
	return "Your tasks:\n\n" + strings.TrimSpace(numbered(tasks, true)), nil
}

func (uc *UseCase) listAll(ctx context.Context, cmd usecase.Command) (string, error) {
	summary, err := uc.perOwner(ctx, cmd.Workspace, repository.IncompleteTasks, func(tasks []domain.Task) string {
		return numbered(tasks, false)
	})
	if err != nil {
		return "", err
	}
	if summary == "" {
		return noTasksFound, nil
	}
	return "Current tasks:\n\n" + summary, nil
}

func (uc *UseCase) listCompleted(ctx context.Context, cmd usecase.Command) (string, error) {
	summary, err := uc.perOwner(ctx, cmd.Workspace, repository.CompletedTasks, bulleted)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return noTasksFound, nil
	}
	return "Completed tasks:\n\n" + summary, nil
}

func (uc *UseCase) clearAll(ctx context.Context, cmd usecase.Command) (string, error) {
	if !cmd.Privileged {
		return "", domain.ErrPermissionDenied
	}
	if _, err := uc.tasks.Clear(ctx, cmd.Workspace); err != nil {
		return "", err
	}
	return "All tasks have been cleared!", nil
}

func (uc *UseCase) retention(ctx context.Context, cmd usecase.Command) (string, error) {
	if cmd.Args == "" {
		current, err := usecase.WorkspaceRetention(ctx, uc.settings, cmd.Workspace, uc.defaultRetention, uc.logger)
		if err != nil {
			return "", err
		}
		if current <= 0 {
			return "Task retention is off.", nil
		}
		return fmt.Sprintf("Tasks older than %s are purged.", domain.FormatRetention(current)), nil
	}

	if !cmd.Privileged {
		return "", domain.NewError(domain.ErrCodeForbidden, "You do not have permission to change retention!")
	}
	if uc.settings == nil {
		return "", domain.NewError(domain.ErrCodeInvalid, "Retention cannot be changed here!")
	}
	d, err := domain.ParseRetention(cmd.Args)
	if err != nil {
		return "", err
	}
	if err := uc.settings.Set(ctx, cmd.Workspace, domain.SettingRetention, domain.FormatRetention(d)); err != nil {
		return "", err
	}
	if d <= 0 {
		return "Task retention is off.", nil
	}
	return fmt.Sprintf("Task retention set to %s.", domain.FormatRetention(d)), nil
}

// perOwner renders one section per owner (sorted) that has tasks matching filter.
func (uc *UseCase) perOwner(ctx context.Context, workspace string, filter func(workspace, owner string) repository.TaskFilter, render func([]domain.Task) string) (string, error) {
	owners, err := uc.tasks.ListOwners(ctx, workspace)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, owner := range owners {
		tasks, err := uc.tasks.List(ctx, filter(workspace, owner))
		if err != nil {
			return "", err
		}
		if len(tasks) == 0 {
			continue
		}
		b.WriteString(section(owner, render(tasks)))
	}
	return strings.TrimSpace(b.String()), nil
}

// activateEarliest activates the oldest incomplete task, returning its name or "" when
// the owner has none left.
func (uc *UseCase) activateEarliest(ctx context.Context, cmd usecase.Command) (string, error) {
	tasks, err := uc.tasks.List(ctx, repository.IncompleteTasks(cmd.Workspace, cmd.User))
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", nil
	}
	if err := uc.activate(ctx, cmd, tasks[0].Name); err != nil {
		return "", err
	}
	return tasks[0].Name, nil
}

func (uc *UseCase) activate(ctx context.Context, cmd usecase.Command, name string) error {
	err := uc.tasks.Activate(ctx, cmd.Workspace, cmd.User, name)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.TaskNotFound(name)
	}
	return err
}
