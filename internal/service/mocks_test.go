package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flytrap/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	args := m.Called(ctx, userUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) IsRoot(ctx context.Context, userUUID string) (bool, error) {
	args := m.Called(ctx, userUUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetRoot(ctx context.Context, userUUID string, isRoot bool) error {
	args := m.Called(ctx, userUUID, isRoot)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userUUID, passwordHash string) error {
	args := m.Called(ctx, userUUID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByUUID(ctx context.Context, userUUID string) error {
	args := m.Called(ctx, userUUID)
	return args.Error(0)
}

// MockProjectRepository is a mock implementation of ProjectRepository.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) FindByUUID(ctx context.Context, projectUUID string) (*model.Project, error) {
	args := m.Called(ctx, projectUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) Rename(ctx context.Context, projectUUID, name string) error {
	args := m.Called(ctx, projectUUID, name)
	return args.Error(0)
}

func (m *MockProjectRepository) DeleteByUUID(ctx context.Context, projectUUID string) error {
	args := m.Called(ctx, projectUUID)
	return args.Error(0)
}

func (m *MockProjectRepository) ListForUser(ctx context.Context, userUUID string) ([]model.Project, error) {
	args := m.Called(ctx, userUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) ListMembers(ctx context.Context, projectUUID string) ([]model.User, error) {
	args := m.Called(ctx, projectUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockProjectRepository) ListProjectMembers(ctx context.Context, projectUUID string) ([]string, error) {
	args := m.Called(ctx, projectUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProjectRepository) AddMember(ctx context.Context, projectUUID, userUUID string) error {
	args := m.Called(ctx, projectUUID, userUUID)
	return args.Error(0)
}

func (m *MockProjectRepository) RemoveMember(ctx context.Context, projectUUID, userUUID string) error {
	args := m.Called(ctx, projectUUID, userUUID)
	return args.Error(0)
}

// MockInvalidator is a mock implementation of RootStatusInvalidator.
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, userUUID string) error {
	args := m.Called(ctx, userUUID)
	return args.Error(0)
}
