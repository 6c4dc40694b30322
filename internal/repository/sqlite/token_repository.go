package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const createAuthTokensTable = `
CREATE TABLE IF NOT EXISTS auth_tokens (
	key TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) repository.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAuthTokensTable); err != nil {
		return fmt.Errorf("create auth_tokens table: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts token unless its user already has one. The caller
// reads the stored token back with GetByUserID.
func (r *TokenRepository) CreateIfAbsent(ctx context.Context, token *domain.AuthToken) error {
	token.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO auth_tokens (key, user_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO NOTHING`,
		token.Key,
		token.UserID,
		token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token key: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT key, user_id, created_at
FROM auth_tokens
WHERE user_id = ?`,
		userID,
	)
	return scanToken(row)
}

func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT key, user_id, created_at
FROM auth_tokens
WHERE key = ?`,
		key,
	)
	return scanToken(row)
}

func scanToken(row interface {
	Scan(dest ...any) error
}) (*domain.AuthToken, error) {
	var token domain.AuthToken
	if err := row.Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &token, nil
}
