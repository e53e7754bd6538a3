package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/pkg/telemetry"
)

const probeTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RedisPinger probes a go-redis client.
func RedisPinger(client *redislib.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// JournalSizer is implemented by the exchange journal.
type JournalSizer interface {
	Size() (int, error)
}

// Dependencies lists what the monitor probes. Redis and Journal are optional.
type Dependencies struct {
	Store   Pinger
	Redis   Pinger
	Journal JournalSizer
}

// Monitor periodically probes the Task Store, Redis and the journal.
type Monitor struct {
	deps Dependencies

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(deps Dependencies, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		deps:     deps,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start probes once synchronously so the first health request sees real data,
// then keeps probing in the background until Stop.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline gates background maintenance.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe and records the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Store:     probe(ctx, m.deps.Store),
		LastCheck: time.Now(),
	}
	if m.deps.Redis != nil {
		ok := probe(ctx, m.deps.Redis)
		status.Redis = &ok
	}
	if m.deps.Journal != nil {
		size, err := m.deps.Journal.Size()
		ok := err == nil
		if ok {
			telemetry.JournalEntries.Set(float64(size))
		} else {
			m.logger.Warn("journal size check failed", zap.Error(err))
		}
		status.Journal, status.JournalSize = &ok, size
	}

	m.mu.Lock()
	prev := m.status
	if !status.Healthy() {
		status.Failures = prev.Failures + 1
	}
	m.status = status
	m.mu.Unlock()

	switch {
	case prev.LastCheck.IsZero() && !status.Healthy():
		m.logger.Warn("dependencies unhealthy at startup", zap.Bool("store", status.Store))
	case !prev.LastCheck.IsZero() && prev.Healthy() != status.Healthy():
		m.logger.Warn("dependency health changed",
			zap.Bool("healthy", status.Healthy()),
			zap.Bool("store", status.Store),
			zap.Int("consecutive_failures", status.Failures))
	}
	return status
}

func probe(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return p.Ping(ctx) == nil
}
