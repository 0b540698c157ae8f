package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
	"flytrap/internal/repository"
)

// RootStatusInvalidator drops cached root status for a user.
type RootStatusInvalidator interface {
	Invalidate(ctx context.Context, userUUID string) error
}

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	FirstName         string
	LastName          string
	Email             string
	Password          string
	ConfirmedPassword string
	IsRoot            bool
}

// UserService exposes user management operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, userUUID string) (*model.User, error)
	DeleteUser(ctx context.Context, userUUID string) error
	UpdatePassword(ctx context.Context, userUUID, password string) error
	ListUserProjects(ctx context.Context, userUUID string) ([]model.Project, error)
}

type userService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	roots    RootStatusInvalidator
	validate *validator.Validate
}

// NewUserService builds a UserService. roots may be nil when no cache is in use.
func NewUserService(users repository.UserRepository, projects repository.ProjectRepository, roots RootStatusInvalidator) UserService {
	return &userService{
		users:    users,
		projects: projects,
		roots:    roots,
		validate: validator.New(),
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// CreateUser validates the input, rejects duplicate emails and stores the user with a bcrypt hash.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.ErrBadRequest
	}
	if in.Password != in.ConfirmedPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return nil, apperrors.ErrInvalidEmail
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsRoot:       in.IsRoot,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userUUID string) (*model.User, error) {
	return s.users.FindByUUID(ctx, userUUID)
}

// DeleteUser removes the user and its memberships. Tokens already issued to the user stay
// valid until they expire; the next refresh fails.
func (s *userService) DeleteUser(ctx context.Context, userUUID string) error {
	if err := s.users.DeleteByUUID(ctx, userUUID); err != nil {
		return err
	}
	if s.roots != nil {
		_ = s.roots.Invalidate(ctx, userUUID)
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, userUUID, password string) error {
	if password == "" {
		return apperrors.ErrBadRequest
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userUUID, hash)
}

// ListUserProjects returns the projects a user can see: all of them for root users,
// otherwise those with an explicit membership.
func (s *userService) ListUserProjects(ctx context.Context, userUUID string) ([]model.Project, error) {
	user, err := s.users.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if user.IsRoot {
		return s.projects.List(ctx)
	}
	return s.projects.ListForUser(ctx, userUUID)
}
