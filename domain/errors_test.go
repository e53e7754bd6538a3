package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskbot/domain"
)

func TestErrorIs_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("activate: %w", domain.ErrTaskNotFound)

	assert.ErrorIs(t, wrapped, domain.ErrTaskNotFound)
	assert.NotErrorIs(t, wrapped, domain.ErrNoActiveTask)
	assert.ErrorIs(t, domain.NewError(domain.ErrCodeNotFound, "task not found"), domain.ErrTaskNotFound)
}

func TestIsDomainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list: %w", domain.WrapError(domain.ErrCodeStore, "postgres: list tasks", cause))

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStore))
	assert.False(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list: postgres: list tasks: connection refused", err.Error())
	assert.False(t, domain.IsDomainError(cause, domain.ErrCodeStore))
}

func TestIsUserFacing(t *testing.T) {
	for _, err := range []error{
		domain.ErrEmptyTaskName,
		domain.ErrNoActiveTask,
		domain.ErrPermissionDenied,
		domain.ErrRateLimited,
		domain.TaskNotFound("3"),
	} {
		assert.True(t, domain.IsUserFacing(err), err.Error())
	}

	assert.False(t, domain.IsUserFacing(domain.WrapError(domain.ErrCodeStore, "sqlite: add task", errors.New("disk full"))))
	assert.False(t, domain.IsUserFacing(errors.New("plain")))
	assert.Equal(t, "Could not find task: 3", domain.TaskNotFound("3").Error())
}
