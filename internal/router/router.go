package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apiHandler "github.com/fastygo/taskbot/api/handler"
)

type Handlers struct {
	Command   *apiHandler.CommandHandler
	Task      *apiHandler.TaskHandler
	Exchanges *apiHandler.ExchangeHandler
	Health    *apiHandler.HealthHandler
}

// Options toggles optional routes.
type Options struct {
	Metrics bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if opts.Metrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}

	// Protected routes
	r.POST("/api/v1/commands", authMiddleware(handlers.Command.Submit))
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.GET("/api/v1/exchanges", authMiddleware(handlers.Exchanges.Recent))

	return r
}
