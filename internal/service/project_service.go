package service

import (
	"context"
	"strings"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
	"flytrap/internal/repository"
)

// ProjectService exposes project and membership management.
type ProjectService interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, name string) (*model.Project, error)
	GetProject(ctx context.Context, projectUUID string) (*model.Project, error)
	RenameProject(ctx context.Context, projectUUID, name string) error
	DeleteProject(ctx context.Context, projectUUID string) error
	ListMembers(ctx context.Context, projectUUID string) ([]model.User, error)
	AddMember(ctx context.Context, projectUUID, userUUID string) error
	RemoveMember(ctx context.Context, projectUUID, userUUID string) error
}

type projectService struct {
	repo repository.ProjectRepository
}

// NewProjectService builds a ProjectService.
func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.repo.List(ctx)
}

func (s *projectService) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrBadRequest
	}
	project := &model.Project{Name: name}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, projectUUID string) (*model.Project, error) {
	return s.repo.FindByUUID(ctx, projectUUID)
}

func (s *projectService) RenameProject(ctx context.Context, projectUUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ErrBadRequest
	}
	return s.repo.Rename(ctx, projectUUID, name)
}

func (s *projectService) DeleteProject(ctx context.Context, projectUUID string) error {
	return s.repo.DeleteByUUID(ctx, projectUUID)
}

func (s *projectService) ListMembers(ctx context.Context, projectUUID string) ([]model.User, error) {
	if _, err := s.repo.FindByUUID(ctx, projectUUID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectUUID)
}

func (s *projectService) AddMember(ctx context.Context, projectUUID, userUUID string) error {
	if userUUID == "" {
		return apperrors.ErrBadRequest
	}
	return s.repo.AddMember(ctx, projectUUID, userUUID)
}

func (s *projectService) RemoveMember(ctx context.Context, projectUUID, userUUID string) error {
	return s.repo.RemoveMember(ctx, projectUUID, userUUID)
}
