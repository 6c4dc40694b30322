package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

// ProfileUpdate lists the fields an owner may change on their account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	CreateUser(ctx context.Context, email, password, name string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller *domain.User, update ProfileUpdate) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	cost  int
}

// NewUserService builds a UserService hashing with the given bcrypt cost.
// A cost of zero selects bcrypt.DefaultCost.
func NewUserService(users repository.UserRepository, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users: users,
		cost:  bcryptCost,
	}
}

func (s *userService) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.create(ctx, &domain.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		IsActive: true,
	}, password)
}

func (s *userService) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return s.create(ctx, &domain.User{
		Email:       email,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

func (s *userService) create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)
	if user.Email == "" {
		return nil, NewValidationError("email", "users must have an email address")
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("email", "user with this email already exists")
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// UpdateProfile applies update to the caller's own account.
func (s *userService) UpdateProfile(ctx context.Context, caller *domain.User, update ProfileUpdate) (*domain.User, error) {
	if caller == nil || caller.ID == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if email == "" {
			return nil, NewValidationError("email", "this field may not be blank")
		}
		user.Email = email
	}
	if update.Password != nil {
		hash, err := s.hash(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("email", "user with this email already exists")
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) hash(password string) (string, error) {
	if password == "" {
		return "", NewValidationError("password", "this field may not be blank")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", NewValidationError("password", "ensure this field has no more than 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
