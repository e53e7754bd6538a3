package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskbot/internal/services/lifecycle"
)

func TestShutdown_ReverseOrderJoinsErrors(t *testing.T) {
	m := lifecycle.New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("store", func(context.Context) error {
		order = append(order, "store")
		return nil
	})
	m.Register("journal", func(context.Context) error {
		order = append(order, "journal")
		return boom
	})
	m.Register("http", func(context.Context) error {
		order = append(order, "http")
		return nil
	})
	m.Register("nil", nil)

	err := m.Shutdown(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"http", "journal", "store"}, order)

	// Hooks run once.
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestGo_ReportsComponentFailure(t *testing.T) {
	m := lifecycle.New(time.Second, nil)
	stop := make(chan struct{})

	m.Go("server", func() error { return errors.New("listen failed") })
	m.Go("worker", func() error {
		<-stop
		return nil
	})

	select {
	case err := <-m.Errors():
		assert.EqualError(t, err, "listen failed")
	case <-time.After(time.Second):
		t.Fatal("component failure not reported")
	}

	m.Register("worker", func(context.Context) error {
		close(stop)
		return nil
	})
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestShutdown_TimesOutOnStuckComponent(t *testing.T) {
	m := lifecycle.New(50*time.Millisecond, nil)
	block := make(chan struct{})
	defer close(block)

	m.Go("stuck", func() error {
		<-block
		return nil
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
