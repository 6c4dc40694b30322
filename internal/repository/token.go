package repository

import (
	"context"

	"recipe-api/internal/domain"
)

// TokenRepository stores the one-to-one user to auth token mapping.
type TokenRepository interface {
	Init(ctx context.Context) error
	// CreateIfAbsent stores token unless the user already owns one.
	CreateIfAbsent(ctx context.Context, token *domain.AuthToken) error
	GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error)
	GetByKey(ctx context.Context, key string) (*domain.AuthToken, error)
}
