package notifier

import (
	"context"

	"campaignpulse/internal/classifier"
	"campaignpulse/internal/domain"
)

type Notification struct {
	Comment domain.Comment
	Result  classifier.Result
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Nop drops every notification. Used when no Telegram token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
