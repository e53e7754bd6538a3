package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/api/transport"
	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/pkg/httpcontext"
)

const (
	defaultExchangeLimit = 50
	maxExchangeLimit     = 500
)

// ExchangeSource reads the journal, newest first.
type ExchangeSource interface {
	Recent(workspace string, limit int) ([]domain.Exchange, error)
}

type ExchangeHandler struct {
	baseHandler
	source ExchangeSource
}

func NewExchangeHandler(source ExchangeSource, adapter *httpcontext.Adapter, logger *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		source:      source,
	}
}

// @Summary Recent command exchanges of the caller's workspace
// @Tags exchanges
// @Param limit query int false "max entries (default 50)"
// @Router /api/v1/exchanges [get]
func (h *ExchangeHandler) Recent(ctx *fasthttp.RequestCtx) {
	workspace, _, ok := h.caller(ctx)
	if !ok {
		return
	}
	if h.source == nil {
		h.respondJSON(ctx, http.StatusNotFound, transport.Failure(string(domain.ErrCodeNotFound), "journal disabled"))
		return
	}

	limit := parseInt(ctx.QueryArgs().Peek("limit"), defaultExchangeLimit)
	if limit <= 0 || limit > maxExchangeLimit {
		limit = defaultExchangeLimit
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	exchanges, err := h.source.Recent(workspace, limit)
	if err != nil {
		h.respondError(ctx, stdCtx, domain.WrapError(domain.ErrCodeStore, "journal read failed", err))
		return
	}
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}
	h.respondJSON(ctx, http.StatusOK, transport.List(exchanges, len(exchanges)))
}
