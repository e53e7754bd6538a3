package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/api/transport"
	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/pkg/httpcontext"
	"github.com/fastygo/taskbot/usecase"
	taskUC "github.com/fastygo/taskbot/usecase/task"
)

// CommandProcessor is the part of the task use case the webhook needs.
type CommandProcessor interface {
	Handle(ctx context.Context, req taskUC.Request, sink usecase.ReplySink) (*taskUC.Response, error)
}

type CommandHandler struct {
	baseHandler
	processor       CommandProcessor
	privilegedRoles map[string]struct{}
}

// NewCommandHandler builds the webhook. Callers whose role is in privilegedRoles may
// run moderator-only commands.
func NewCommandHandler(processor CommandProcessor, privilegedRoles []string, adapter *httpcontext.Adapter, logger *zap.Logger) *CommandHandler {
	roles := make(map[string]struct{}, len(privilegedRoles))
	for _, r := range privilegedRoles {
		roles[strings.ToLower(r)] = struct{}{}
	}
	return &CommandHandler{
		baseHandler:     newBaseHandler(adapter, logger),
		processor:       processor,
		privilegedRoles: roles,
	}
}

// @Summary Submit a chat command
// @Tags commands
// @Accept json
// @Produce json
// @Success 200 {object} transport.Envelope
// @Success 204 "text is not a command"
// @Router /api/v1/commands [post]
func (h *CommandHandler) Submit(ctx *fasthttp.RequestCtx) {
	workspace, userID, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req transport.CommandRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.Failure(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// The reply travels back in the HTTP response body.
	sink := usecase.ReplyFunc(func(context.Context, string) error { return nil })

	resp, err := h.processor.Handle(stdCtx, taskUC.Request{
		Workspace:  workspace,
		User:       userID,
		Text:       req.Text,
		Privileged: h.privileged(ctx),
	}, sink)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if resp == nil {
		ctx.SetStatusCode(http.StatusNoContent)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CommandResponse{
		Command: resp.Command,
		Reply:   resp.Text,
	})
}

func (h *CommandHandler) privileged(ctx *fasthttp.RequestCtx) bool {
	role := strings.ToLower(string(ctx.Request.Header.Peek(HeaderUserRole)))
	_, ok := h.privilegedRoles[role]
	return ok
}
