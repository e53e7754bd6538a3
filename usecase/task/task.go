// Package task is the command processor: it interprets chat commands against the
// Task Store and produces the reply text. It never caches tasks; every command
// reads the store afresh.
package task

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/pkg/logger"
	"github.com/fastygo/taskbot/pkg/telemetry"
	"github.com/fastygo/taskbot/repository"
	"github.com/fastygo/taskbot/usecase"
)

// DefaultPrefix marks chat text addressed to the task bot.
const DefaultPrefix = "!"

// Request is an inbound command as handed over by a transport adapter.
type Request struct {
	Workspace  string
	User       string
	Text       string
	Privileged bool
}

// Response is the reply produced for a recognized command.
type Response struct {
	Command string
	Text    string
}

type UseCase struct {
	tasks      repository.TaskRepository
	settings   repository.SettingRepository
	journal    usecase.Journal
	limiter    usecase.RateLimiter
	dispatcher *usecase.Dispatcher
	logger     *zap.Logger

	prefix           string
	ownerScoped      bool
	defaultRetention time.Duration
	intn             func(n int) int
	help             string
}

// Option configures optional UseCase behaviour.
type Option func(*UseCase)

// WithPrefix sets the command prefix. An empty prefix treats every message as a command candidate.
func WithPrefix(prefix string) Option {
	return func(uc *UseCase) { uc.prefix = prefix }
}

// WithOwnerScopedLookup restricts name resolution to the issuer's own tasks. By default
// names resolve across the whole workspace while mutations stay scoped to the issuer.
func WithOwnerScopedLookup(scoped bool) Option {
	return func(uc *UseCase) { uc.ownerScoped = scoped }
}

// WithJournal records every delivered exchange.
func WithJournal(j usecase.Journal) Option {
	return func(uc *UseCase) { uc.journal = j }
}

// WithRateLimiter throttles commands per workspace user.
func WithRateLimiter(l usecase.RateLimiter) Option {
	return func(uc *UseCase) { uc.limiter = l }
}

// WithDefaultRetention is reported by the retention command when the workspace has no setting.
func WithDefaultRetention(d time.Duration) Option {
	return func(uc *UseCase) { uc.defaultRetention = d }
}

// WithRandom replaces the source used to pick encouragement lines.
func WithRandom(intn func(n int) int) Option {
	return func(uc *UseCase) {
		if intn != nil {
			uc.intn = intn
		}
	}
}

func New(tasks repository.TaskRepository, settings repository.SettingRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:      tasks,
		settings:   settings,
		dispatcher: usecase.NewDispatcher(),
		logger:     logger,
		prefix:     DefaultPrefix,
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.help = helpText(uc.prefix)
	uc.register()
	return uc
}

func (uc *UseCase) register() {
	d := uc.dispatcher
	d.Register("help", uc.showHelp, "taskhelp", "taskshelp")
	d.Register("add", uc.addTask, "addtask")
	d.Register("start", uc.startTask, "starttask")
	d.Register("current", uc.currentTask, "task")
	d.Register("done", uc.completeTask)
	d.Register("cancel", uc.cancelTask)
	d.Register("advance", uc.advanceTask, "next")
	d.Register("list-mine", uc.listMine, "tasks")
	d.Register("list-all", uc.listAll, "alltasks")
	d.Register("list-completed", uc.listCompleted, "completed")
	d.Register("clear-all", uc.clearAll, "cleartasks")
	d.Register("retention", uc.retention)
}

// Commands returns the canonical command names.
func (uc *UseCase) Commands() []string {
	return uc.dispatcher.Names()
}

// Execute interprets req.Text. It returns (nil, nil) when the text is not a command
// for this bot. Validation, lookup and permission failures come back as a Response
// carrying the user-facing message; store failures are returned as errors and leave
// no reply.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	keyword, args, ok := uc.parse(req.Text)
	if !ok {
		return nil, nil
	}
	name, handler, ok := uc.dispatcher.Lookup(keyword)
	if !ok {
		return nil, nil
	}

	cmd := usecase.Command{
		Name:       name,
		Keyword:    keyword,
		Args:       args,
		Workspace:  req.Workspace,
		User:       req.User,
		Privileged: req.Privileged,
	}

	start := time.Now()
	reply, err := uc.run(ctx, cmd, handler)
	telemetry.CommandDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		telemetry.CommandsTotal.WithLabelValues(name, telemetry.OutcomeOK).Inc()
		return &Response{Command: name, Text: reply}, nil
	case domain.IsUserFacing(err):
		telemetry.CommandsTotal.WithLabelValues(name, telemetry.OutcomeRejected).Inc()
		return &Response{Command: name, Text: userMessage(err)}, nil
	default:
		telemetry.CommandsTotal.WithLabelValues(name, telemetry.OutcomeFailed).Inc()
		return nil, err
	}
}

// Handle is the transport entry point: it executes the command, delivers the reply
// through sink, logs the exchange and appends it to the journal. The delivered
// response is returned as well; it is nil when text was not a command.
func (uc *UseCase) Handle(ctx context.Context, req Request, sink usecase.ReplySink) (*Response, error) {
	ctx = ensureRequestID(ctx)
	log := logger.WithRequestID(ctx, uc.logger).With(
		zap.String("workspace", req.Workspace),
		zap.String("user", req.User),
	)

	resp, err := uc.Execute(ctx, req)
	if err != nil {
		log.Error("command failed", zap.String("input", req.Text), zap.Error(err))
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	if err := sink.Reply(ctx, resp.Text); err != nil {
		log.Error("reply delivery failed", zap.String("command", resp.Command), zap.Error(err))
		return nil, err
	}
	log.Info("command processed",
		zap.String("command", resp.Command),
		zap.String("input", req.Text),
		zap.String("reply", resp.Text))

	if uc.journal != nil {
		exchange := domain.Exchange{
			ID:        uuid.NewString(),
			Workspace: req.Workspace,
			User:      req.User,
			Command:   resp.Command,
			Input:     req.Text,
			Reply:     resp.Text,
			Timestamp: time.Now().UTC(),
		}
		if err := uc.journal.Record(ctx, exchange); err != nil {
			log.Warn("journal write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Task states accepted by ListTasks.
const (
	StateAll        = ""
	StateIncomplete = "incomplete"
	StateCompleted  = "completed"
)

// ListTasks is the read-only query used by the HTTP adapter. An empty owner lists
// the whole workspace.
func (uc *UseCase) ListTasks(ctx context.Context, workspace, owner, state string) ([]domain.Task, error) {
	var filter repository.TaskFilter
	switch strings.ToLower(state) {
	case StateAll, "all":
		filter = repository.AllTasks(workspace, owner)
	case StateIncomplete:
		filter = repository.IncompleteTasks(workspace, owner)
	case StateCompleted:
		filter = repository.CompletedTasks(workspace, owner)
	default:
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task state: "+state)
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) run(ctx context.Context, cmd usecase.Command, handler usecase.CommandHandler) (string, error) {
	if uc.limiter != nil {
		allowed, err := uc.limiter.Allow(ctx, limiterKey(cmd.Workspace, cmd.User))
		if err != nil {
			uc.logger.Warn("rate limiter unavailable, allowing command", zap.Error(err))
		} else if !allowed {
			telemetry.RateLimitedTotal.Inc()
			return "", domain.ErrRateLimited
		}
	}
	return handler(ctx, cmd)
}

// parse splits "<prefix><keyword> <args>" into keyword and trimmed args.
func (uc *UseCase) parse(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if uc.prefix != "" {
		rest, found := strings.CutPrefix(text, uc.prefix)
		if !found {
			return "", "", false
		}
		text = rest
	}
	if text == "" {
		return "", "", false
	}
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return text, "", true
	}
	return text[:end], strings.TrimSpace(text[end:]), true
}

func userMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}

func ensureRequestID(ctx context.Context) context.Context {
	if logger.RequestID(ctx) != "" {
		return ctx
	}
	return logger.ContextWithRequestID(ctx, uuid.NewString())
}

// limiterKey identifies one owner's bucket. The workspace is length-prefixed so
// names containing the separator cannot collide.
func limiterKey(workspace, user string) string {
	return strconv.Itoa(len(workspace)) + ":" + workspace + ":" + user
}
