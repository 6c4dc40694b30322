package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const maxTagNameLength = 255

// TagService manages tags on behalf of their owner.
type TagService interface {
	CreateTag(ctx context.Context, owner *domain.User, name string) (*domain.Tag, error)
	ListTags(ctx context.Context, owner *domain.User) ([]domain.Tag, error)
}

type tagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) TagService {
	return &tagService{tags: tags}
}

func (s *tagService) CreateTag(ctx context.Context, owner *domain.User, name string) (*domain.Tag, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthenticated
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "this field may not be blank")
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return nil, NewValidationError("name", "ensure this field has no more than 255 characters")
	}

	tag := &domain.Tag{UserID: owner.ID, Name: name}
	if _, err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns the owner's tags ordered by name descending.
func (s *tagService) ListTags(ctx context.Context, owner *domain.User) ([]domain.Tag, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.tags.ListByUser(ctx, owner.ID)
}
