package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/api/handler"
	"github.com/fastygo/taskbot/api/transport"
	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/internal/infrastructure/monitor"
	"github.com/fastygo/taskbot/pkg/httpcontext"
	"github.com/fastygo/taskbot/repository/sqlite"
	"github.com/fastygo/taskbot/usecase"
	taskUC "github.com/fastygo/taskbot/usecase/task"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   *transport.Meta `json:"meta"`
}

func newUseCase(t *testing.T) *taskUC.UseCase {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return taskUC.New(sqlite.NewTaskRepository(db), sqlite.NewSettingRepository(db), zap.NewNop(),
		taskUC.WithRandom(func(int) int { return 0 }))
}

func request(method, body, role string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.Header.Set(handler.HeaderWorkspace, "guild")
	ctx.Request.Header.Set(handler.HeaderUserID, "alice")
	if role != "" {
		ctx.Request.Header.Set(handler.HeaderUserRole, role)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	return env
}

func submit(t *testing.T, h *handler.CommandHandler, text, role string) *fasthttp.RequestCtx {
	t.Helper()
	body, err := json.Marshal(transport.CommandRequest{Text: text})
	require.NoError(t, err)
	ctx := request(http.MethodPost, string(body), role)
	h.Submit(ctx)
	return ctx
}

func TestCommandHandler_RepliesToCommand(t *testing.T) {
	h := handler.NewCommandHandler(newUseCase(t), []string{"moderator"}, httpcontext.NewAdapter(time.Second), zap.NewNop())

	ctx := submit(t, h, "!add write report", "")

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := decode(t, ctx)
	assert.Equal(t, "success", env.Status)
	var resp transport.CommandResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "add", resp.Command)
	assert.Equal(t, "Added your new task: write report\nYou got this!", resp.Reply)
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))
}

func TestCommandHandler_NotACommand(t *testing.T) {
	h := handler.NewCommandHandler(newUseCase(t), nil, nil, nil)

	ctx := submit(t, h, "good morning everyone", "")

	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Body())
}

func TestCommandHandler_PrivilegeFromRole(t *testing.T) {
	h := handler.NewCommandHandler(newUseCase(t), []string{"Moderator", "admin"}, nil, nil)

	var resp transport.CommandResponse
	ctx := submit(t, h, "!clear-all", "member")
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &resp))
	assert.Equal(t, "You do not have permission to clear tasks!", resp.Reply)

	ctx = submit(t, h, "!clear-all", "moderator")
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &resp))
	assert.Equal(t, "All tasks have been cleared!", resp.Reply)
}

func TestCommandHandler_BadRequests(t *testing.T) {
	h := handler.NewCommandHandler(newUseCase(t), nil, nil, nil)

	ctx := request(http.MethodPost, "{not json", "")
	h.Submit(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	anon := &fasthttp.RequestCtx{}
	anon.Request.SetBodyString(`{"text":"!add A"}`)
	h.Submit(anon)
	assert.Equal(t, http.StatusUnauthorized, anon.Response.StatusCode())
}

type failingProcessor struct{}

func (failingProcessor) Handle(context.Context, taskUC.Request, usecase.ReplySink) (*taskUC.Response, error) {
	return nil, domain.WrapError(domain.ErrCodeStore, "postgres: add task", errors.New("connection reset"))
}

func TestCommandHandler_StoreFailure(t *testing.T) {
	h := handler.NewCommandHandler(failingProcessor{}, nil, nil, nil)

	ctx := submit(t, h, "!add A", "")

	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	env := decode(t, ctx)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, string(domain.ErrCodeStore), env.Code)
	assert.NotContains(t, env.Error, "connection reset")
}

func TestCommandHandler_EchoesRequestID(t *testing.T) {
	h := handler.NewCommandHandler(newUseCase(t), nil, httpcontext.NewAdapter(time.Second), nil)

	ctx := request(http.MethodPost, `{"text":"!list-mine"}`, "")
	ctx.Request.Header.Set(httpcontext.RequestIDHeader, "chat-42")
	h.Submit(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "chat-42", string(ctx.Response.Header.Peek(httpcontext.RequestIDHeader)))
	var resp transport.CommandResponse
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &resp))
	assert.Equal(t, "list-mine", resp.Command)
}

func TestTaskHandler_ListsByState(t *testing.T) {
	uc := newUseCase(t)
	cmd := handler.NewCommandHandler(uc, nil, nil, nil)
	submit(t, cmd, "!add A", "")
	submit(t, cmd, "!add B", "")
	submit(t, cmd, "!done", "")

	h := handler.NewTaskHandler(uc, nil, nil)

	ctx := request(http.MethodGet, "", "")
	ctx.Request.SetRequestURI("/api/v1/tasks?owner=alice&state=completed")
	h.GetTasks(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var tasks []domain.Task
	env := decode(t, ctx)
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Equal(t, []string{"A"}, domain.TaskNames(tasks))
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)

	ctx = request(http.MethodGet, "", "")
	ctx.Request.SetRequestURI("/api/v1/tasks?state=sometime")
	h.GetTasks(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

type fakeExchanges struct {
	workspace string
	limit     int
}

func (f *fakeExchanges) Recent(workspace string, limit int) ([]domain.Exchange, error) {
	f.workspace, f.limit = workspace, limit
	return []domain.Exchange{{ID: "1", Workspace: workspace, Command: "add"}}, nil
}

func TestExchangeHandler(t *testing.T) {
	source := &fakeExchanges{}
	h := handler.NewExchangeHandler(source, nil, nil)

	ctx := request(http.MethodGet, "", "")
	ctx.Request.SetRequestURI("/api/v1/exchanges?limit=5000")
	h.Recent(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "guild", source.workspace)
	assert.Equal(t, 50, source.limit)

	disabled := handler.NewExchangeHandler(nil, nil, nil)
	ctx = request(http.MethodGet, "", "")
	disabled.Recent(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealthHandler(t *testing.T) {
	up := true
	down := false

	ctx := &fasthttp.RequestCtx{}
	handler.NewHealthHandler(staticStatus{Store: true, Redis: &up}, nil, nil).Check(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx = &fasthttp.RequestCtx{}
	handler.NewHealthHandler(staticStatus{Store: true, Redis: &down}, nil, nil).Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())

	ctx = &fasthttp.RequestCtx{}
	handler.NewHealthHandler(staticStatus{Store: true}, nil, nil).Check(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode(), "redis not configured")
}
