package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/api/transport"
	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/pkg/httpcontext"
)

// TaskLister answers read-only task queries.
type TaskLister interface {
	ListTasks(ctx context.Context, workspace, owner, state string) ([]domain.Task, error)
}

type TaskHandler struct {
	baseHandler
	tasks TaskLister
}

func NewTaskHandler(tasks TaskLister, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
	}
}

// @Summary List tasks of the caller's workspace
// @Tags tasks
// @Param owner query string false "restrict to one owner"
// @Param state query string false "incomplete or completed"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	workspace, _, ok := h.caller(ctx)
	if !ok {
		return
	}

	owner := string(ctx.QueryArgs().Peek("owner"))
	state := string(ctx.QueryArgs().Peek("state"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.tasks.ListTasks(stdCtx, workspace, owner, state)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondJSON(ctx, http.StatusOK, transport.List(tasks, len(tasks)))
}
