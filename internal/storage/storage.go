package storage

import (
	"context"

	"campaignpulse/internal/domain"
)

type CommentRepository interface {
	Save(ctx context.Context, c domain.ClassifiedComment) error
	FindByID(ctx context.Context, id string) (*domain.ClassifiedComment, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.ClassifiedComment, error)
	FindByTopic(ctx context.Context, topic string, limit, offset int) ([]domain.ClassifiedComment, error)
	Exists(ctx context.Context, id string) (bool, error)
	TopicCounts(ctx context.Context, campaign string) (map[string]int64, error)
}
