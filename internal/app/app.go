// Package app assembles repositories and services on top of an open store.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"recipe-api/internal/config"
	"recipe-api/internal/readiness"
	"recipe-api/internal/repository/sqlite"
	"recipe-api/internal/service"
)

type App struct {
	DB     *sql.DB
	Users  service.UserService
	Tokens service.TokenService
	Tags   service.TagService
}

// ReadinessPolicy maps the readiness config block onto a retry policy.
func ReadinessPolicy(cfg config.Config) readiness.Policy {
	return readiness.Policy{
		Interval:    cfg.Readiness.Interval,
		MaxAttempts: cfg.Readiness.MaxAttempts,
		Backoff:     cfg.Readiness.Backoff,
		MaxInterval: cfg.Readiness.MaxInterval,
	}
}

// OpenStore opens the configured database and blocks until it answers.
func OpenStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*sql.DB, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := readiness.Wait(ctx, db, ReadinessPolicy(cfg), logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New creates the schema if needed and wires the services.
func New(ctx context.Context, db *sql.DB, cfg config.Config) (*App, error) {
	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)
	tagRepo := sqlite.NewTagRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := tokenRepo.Init(ctx); err != nil {
		return nil, fmt.Errorf("init token repository: %w", err)
	}
	if err := tagRepo.Init(ctx); err != nil {
		return nil, fmt.Errorf("init tag repository: %w", err)
	}

	users := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	return &App{
		DB:     db,
		Users:  users,
		Tokens: service.NewTokenService(tokenRepo, users),
		Tags:   service.NewTagService(tagRepo),
	}, nil
}
