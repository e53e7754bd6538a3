// Package httpcontext bridges fasthttp requests to context.Context for the use-case layer.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskbot/pkg/logger"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

type peerKey struct{}

type peer struct {
	addr      string
	userAgent string
}

// Adapter derives bounded, request-scoped contexts.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context bounded by the adapter timeout. The caller's X-Request-ID is
// reused when present so chat adapters can correlate their logs with ours, and echoed
// on the response.
func (a *Adapter) Attach(rc *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)

	id := strings.TrimSpace(string(rc.Request.Header.Peek(RequestIDHeader)))
	if id == "" {
		id = uuid.NewString()
	}
	rc.Response.Header.Set(RequestIDHeader, id)
	ctx = appLogger.ContextWithRequestID(ctx, id)

	p := peer{userAgent: string(rc.Request.Header.UserAgent())}
	if addr := rc.RemoteAddr(); addr != nil {
		p.addr = addr.String()
	}
	return context.WithValue(ctx, peerKey{}, p), cancel
}

// Peer returns the remote address and user agent recorded by Attach.
func Peer(ctx context.Context) (addr, userAgent string) {
	p, _ := ctx.Value(peerKey{}).(peer)
	return p.addr, p.userAgent
}
