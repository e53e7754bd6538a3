package monitor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskbot/internal/infrastructure/monitor"
)

type switchable struct{ err error }

func (s *switchable) Ping(context.Context) error { return s.err }

type sizer struct {
	n   int
	err error
}

func (s sizer) Size() (int, error) { return s.n, s.err }

func TestRefresh_OptionalDependenciesOmitted(t *testing.T) {
	m := monitor.New(monitor.Dependencies{Store: &switchable{}}, 0, nil)

	status := m.Refresh(context.Background())

	assert.True(t, status.Store)
	assert.Nil(t, status.Redis)
	assert.Nil(t, status.Journal)
	assert.True(t, m.IsOnline())
}

func TestRefresh_RedisDownIsUnhealthy(t *testing.T) {
	redis := &switchable{err: errors.New("connection refused")}
	m := monitor.New(monitor.Dependencies{
		Store:   &switchable{},
		Redis:   redis,
		Journal: sizer{n: 3},
	}, 0, nil)

	status := m.Refresh(context.Background())
	require.NotNil(t, status.Redis)
	assert.False(t, *status.Redis)
	require.NotNil(t, status.Journal)
	assert.True(t, *status.Journal)
	assert.Equal(t, 3, status.JournalSize)
	assert.False(t, m.IsOnline())

	redis.err = nil
	assert.True(t, m.Refresh(context.Background()).Healthy())
}

func TestRefresh_BrokenJournalKeepsServiceOnline(t *testing.T) {
	m := monitor.New(monitor.Dependencies{
		Store:   &switchable{},
		Journal: sizer{err: errors.New("bolt: database not open")},
	}, 0, nil)

	status := m.Refresh(context.Background())

	require.NotNil(t, status.Journal)
	assert.False(t, *status.Journal)
	assert.True(t, status.Healthy())
}

func TestRefresh_CountsFailuresAndLogsTransitions(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &switchable{}
	m := monitor.New(monitor.Dependencies{Store: store}, 0, zap.New(core))

	m.Refresh(context.Background())
	store.err = errors.New("timeout")
	m.Refresh(context.Background())
	status := m.Refresh(context.Background())

	assert.Equal(t, 2, status.Failures)
	assert.Equal(t, 1, logs.FilterMessage("dependency health changed").Len())

	store.err = nil
	assert.Zero(t, m.Refresh(context.Background()).Failures)
	assert.Equal(t, 2, logs.FilterMessage("dependency health changed").Len())
}

func TestRefresh_NoStoreIsUnhealthy(t *testing.T) {
	m := monitor.New(monitor.Dependencies{}, 0, nil)
	assert.False(t, m.Refresh(context.Background()).Store)
}
