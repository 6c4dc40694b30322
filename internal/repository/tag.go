package repository

import (
	"context"

	"recipe-api/internal/domain"
)

// TagRepository persists user owned tags. Every read is scoped to one owner.
type TagRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, tag *domain.Tag) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Tag, error)
}
