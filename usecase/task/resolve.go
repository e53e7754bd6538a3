package task

import (
	"context"
	"strconv"

	"github.com/fastygo/taskbot/repository"
	"github.com/fastygo/taskbot/usecase"
)

// resolve turns a user token into a task name. All-digit tokens are 1-based indexes
// into the issuer's incomplete list; anything else is a literal name looked up across
// the workspace (or only among the issuer's tasks when lookups are owner scoped).
// An empty result means the token did not resolve.
func (uc *UseCase) resolve(ctx context.Context, cmd usecase.Command, token string) (string, error) {
	if isIndex(token) {
		tasks, err := uc.tasks.List(ctx, repository.IncompleteTasks(cmd.Workspace, cmd.User))
		if err != nil {
			return "", err
		}
		idx, err := strconv.Atoi(token)
		if err != nil || idx < 1 || idx > len(tasks) {
			return "", nil
		}
		return tasks[idx-1].Name, nil
	}

	matches, err := uc.tasks.FindByName(ctx, cmd.Workspace, token)
	if err != nil {
		return "", err
	}
	for _, t := range matches {
		if !uc.ownerScoped || t.Owner == cmd.User {
			return t.Name, nil
		}
	}
	return "", nil
}

func isIndex(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
