// Package importer loads task lists exported by the earlier JSON-file version of the bot.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/repository"
)

// Entry is one task of the legacy export.
type Entry struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Active    bool   `json:"active"`
}

// Result counts what an import did.
type Result struct {
	Added     int
	Skipped   int
	Completed int
	Activated int
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{tasks: tasks, logger: logger}
}

// Decode reads a {"username": [entry, ...]} document.
func Decode(r io.Reader) (map[string][]Entry, error) {
	var doc map[string][]Entry
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "decode task export", err)
	}
	return doc, nil
}

// Import adds every entry to workspace through the Task Store, owners in sorted order
// and tasks in file order. Completed entries are completed after insertion and an
// active, uncompleted entry becomes its owner's active task.
func (uc *UseCase) Import(ctx context.Context, workspace string, doc map[string][]Entry) (Result, error) {
	var res Result

	owners := make([]string, 0, len(doc))
	for owner := range doc {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		for _, entry := range doc[owner] {
			if entry.Name == "" {
				res.Skipped++
				continue
			}
			added, err := uc.tasks.Add(ctx, workspace, owner, entry.Name)
			if err != nil {
				return res, fmt.Errorf("import %s/%s: %w", owner, entry.Name, err)
			}
			if !added {
				res.Skipped++
				continue
			}
			res.Added++

			switch {
			case entry.Completed:
				if err := uc.tasks.Complete(ctx, workspace, owner, entry.Name); err != nil {
					return res, fmt.Errorf("complete %s/%s: %w", owner, entry.Name, err)
				}
				res.Completed++
			case entry.Active:
				if err := uc.tasks.Activate(ctx, workspace, owner, entry.Name); err != nil {
					return res, fmt.Errorf("activate %s/%s: %w", owner, entry.Name, err)
				}
				res.Activated++
			}
		}
	}

	uc.logger.Info("tasks imported",
		zap.String("workspace", workspace),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
