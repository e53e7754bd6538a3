package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/internal/services"
	"github.com/fastygo/taskbot/usecase/maintenance"
)

type fakePurger struct {
	calls  int
	report maintenance.Report
	err    error
}

func (p *fakePurger) PurgeAll(context.Context) (maintenance.Report, error) {
	p.calls++
	return p.report, p.err
}

type fakeCleaner struct {
	cutoffs []time.Time
}

func (c *fakeCleaner) Cleanup(olderThan time.Time) (int, error) {
	c.cutoffs = append(c.cutoffs, olderThan)
	return 3, nil
}

type health bool

func (h health) IsOnline() bool { return bool(h) }

func TestScheduler_RunOnce(t *testing.T) {
	purger := &fakePurger{report: maintenance.Report{Workspaces: 2, Purged: map[string]int64{"a": 4}}}
	cleaner := &fakeCleaner{}
	s, err := services.NewScheduler(purger, cleaner, health(true), zap.NewNop(), services.SchedulerConfig{
		Interval:         time.Minute,
		JournalRetention: 24 * time.Hour,
	})
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, 1, purger.calls)
	require.Len(t, cleaner.cutoffs, 1)
	assert.WithinDuration(t, before.Add(-24*time.Hour), cleaner.cutoffs[0], time.Minute)
}

func TestScheduler_SkipsWhenOffline(t *testing.T) {
	purger := &fakePurger{}
	cleaner := &fakeCleaner{}
	s, err := services.NewScheduler(purger, cleaner, health(false), nil, services.SchedulerConfig{JournalRetention: time.Hour})
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))

	assert.Zero(t, purger.calls)
	assert.Empty(t, cleaner.cutoffs)
}

func TestScheduler_PurgeErrorStillCleansJournal(t *testing.T) {
	purger := &fakePurger{err: errors.New("store down")}
	cleaner := &fakeCleaner{}
	s, err := services.NewScheduler(purger, cleaner, nil, nil, services.SchedulerConfig{JournalRetention: time.Hour})
	require.NoError(t, err)

	err = s.RunOnce(context.Background())

	assert.EqualError(t, err, "store down")
	assert.Len(t, cleaner.cutoffs, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := services.NewScheduler(&fakePurger{}, nil, nil, nil, services.SchedulerConfig{Interval: time.Hour})
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}

func TestScheduler_CronSpec(t *testing.T) {
	_, err := services.NewScheduler(&fakePurger{}, nil, nil, nil, services.SchedulerConfig{Spec: "0 */15 * * * *"})
	assert.NoError(t, err)

	_, err = services.NewScheduler(&fakePurger{}, nil, nil, nil, services.SchedulerConfig{Spec: "every now and then"})
	assert.ErrorContains(t, err, "every now and then")
}

func TestScheduler_SubSecondIntervalFallsBackToHourly(t *testing.T) {
	s, err := services.NewScheduler(&fakePurger{}, nil, nil, nil, services.SchedulerConfig{Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
