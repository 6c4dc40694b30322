package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const tokenBytes = 20

// TokenService issues and resolves opaque bearer tokens.
type TokenService interface {
	// Login verifies credentials and returns the caller's token.
	Login(ctx context.Context, email, password string) (*domain.AuthToken, error)
	IssueOrGet(ctx context.Context, user *domain.User) (*domain.AuthToken, error)
	Resolve(ctx context.Context, key string) (*domain.User, error)
}

type tokenService struct {
	tokens repository.TokenRepository
	users  UserService
}

func NewTokenService(tokens repository.TokenRepository, users UserService) TokenService {
	return &tokenService{
		tokens: tokens,
		users:  users,
	}
}

func (s *tokenService) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueOrGet(ctx, user)
}

// IssueOrGet returns the user's existing token, creating one on first use.
// Tokens are never rotated.
func (s *tokenService) IssueOrGet(ctx context.Context, user *domain.User) (*domain.AuthToken, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrUnauthenticated
	}

	token, err := s.tokens.GetByUserID(ctx, user.ID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CreateIfAbsent(ctx, &domain.AuthToken{Key: key, UserID: user.ID}); err != nil {
		return nil, err
	}

	// a concurrent login may have won the insert; the stored row is authoritative
	return s.tokens.GetByUserID(ctx, user.ID)
}

func (s *tokenService) Resolve(ctx context.Context, key string) (*domain.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidToken
	}

	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func generateKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
