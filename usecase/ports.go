package usecase

import (
	"context"

	"github.com/fastygo/taskbot/domain"
)

// Journal keeps a durable record of delivered exchanges.
type Journal interface {
	Record(ctx context.Context, exchange domain.Exchange) error
}

// RateLimiter decides whether another command from key may run now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ReplySink delivers reply text back through the transport that received the command.
type ReplySink interface {
	Reply(ctx context.Context, text string) error
}

// ReplyFunc adapts a function to ReplySink.
type ReplyFunc func(ctx context.Context, text string) error

func (f ReplyFunc) Reply(ctx context.Context, text string) error {
	return f(ctx, text)
}
