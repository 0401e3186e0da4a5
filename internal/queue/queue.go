package queue

import (
	"context"

	"campaignpulse/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, c domain.Comment) error
	Close() error
}

// Consumer delivers queued comments to handler. A handler error leaves the
// message unacknowledged so it is delivered again.
type Consumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, c domain.Comment) error) error
	Close() error
}
