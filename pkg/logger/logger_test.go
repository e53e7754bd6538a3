package logger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskbot/pkg/logger"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := logger.ContextWithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", logger.RequestID(ctx))
	assert.Empty(t, logger.RequestID(context.Background()))
}

func TestWithRequestID_AddsField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := logger.ContextWithRequestID(context.Background(), "req-7")
	logger.WithRequestID(ctx, base).Info("command processed")
	logger.WithRequestID(context.Background(), base).Info("no id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestNew_TeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskbot.log")
	log, err := logger.New(logger.Config{Level: "debug", Encoding: "console", File: path})
	require.NoError(t, err)

	log.Info("exchange", zap.String("reply", "Started task: A"))
	_ = log.Sync() // stdout may not support fsync

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"reply":"Started task: A"`)
}
