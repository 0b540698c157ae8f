package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"flytrap/internal/auth"
	"flytrap/internal/cache"
	"flytrap/internal/config"
	"flytrap/internal/db"
	apperrors "flytrap/internal/errors"
	"flytrap/internal/logging"
	"flytrap/internal/repository"
	"flytrap/internal/service"
)

const seedTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	root, err := config.LoadRootUser()
	if err != nil {
		logger.Fatal("invalid seed configuration", zap.Error(err))
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	logger.Info("database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer func() { _ = cacheClient.Close() }()

	userRepo := repository.NewUserRepository(gormDB)
	roots := auth.NewCachedRootStatus(userRepo, cacheClient, cfg.RootCacheTTL)
	users := service.NewUserService(userRepo, repository.NewProjectRepository(gormDB), roots)

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	userUUID, created, err := seedRoot(ctx, users, userRepo, roots, root)
	if err != nil {
		logger.Fatal("seed root user", zap.Error(err))
	}
	logger.Info("seed completed",
		zap.String("user_uuid", userUUID),
		zap.String("email", root.Email),
		zap.Bool("created", created),
	)
}

// seedRoot creates the root user, or promotes an existing user with the same email.
func seedRoot(
	ctx context.Context,
	users service.UserService,
	repo repository.UserRepository,
	roots service.RootStatusInvalidator,
	root config.RootUser,
) (userUUID string, created bool, err error) {
	user, err := users.CreateUser(ctx, service.CreateUserInput{
		FirstName:         root.FirstName,
		LastName:          root.LastName,
		Email:             root.Email,
		Password:          root.Password,
		ConfirmedPassword: root.Password,
		IsRoot:            true,
	})
	if err == nil {
		return user.UUID, true, nil
	}
	if !errors.Is(err, apperrors.ErrUserAlreadyExists) {
		return "", false, err
	}

	existing, err := repo.FindByEmail(ctx, root.Email)
	if err != nil {
		return "", false, fmt.Errorf("find existing user: %w", err)
	}
	if err := repo.SetRoot(ctx, existing.UUID, true); err != nil {
		return "", false, fmt.Errorf("promote user: %w", err)
	}
	_ = roots.Invalidate(ctx, existing.UUID)
	return existing.UUID, false, nil
}
