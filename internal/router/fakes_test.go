package router

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
)

// store is an in-memory stand-in for the MySQL repositories.
type store struct {
	mu       sync.Mutex
	users    []*model.User
	projects []*model.Project
	members  map[string]map[string]bool // project uuid -> user uuids
}

func newStore() *store {
	return &store{members: map[string]map[string]bool{}}
}

func (s *store) user(userUUID string) *model.User {
	for _, u := range s.users {
		if u.UUID == userUUID {
			return u
		}
	}
	return nil
}

func (s *store) project(projectUUID string) *model.Project {
	for _, p := range s.projects {
		if p.UUID == projectUUID {
			return p
		}
	}
	return nil
}

type fakeUsers struct{ *store }

func (f fakeUsers) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.UUID == "" {
		user.UUID = uuid.NewString()
	}
	f.users = append(f.users, user)
	return nil
}

func (f fakeUsers) FindByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.user(userUUID); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) List(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f fakeUsers) IsRoot(ctx context.Context, userUUID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.user(userUUID); u != nil {
		return u.IsRoot, nil
	}
	return false, apperrors.ErrUserNotFound
}

func (f fakeUsers) SetRoot(ctx context.Context, userUUID string, isRoot bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user(userUUID)
	if u == nil {
		return apperrors.ErrUserNotFound
	}
	u.IsRoot = isRoot
	return nil
}

func (f fakeUsers) UpdatePassword(ctx context.Context, userUUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user(userUUID)
	if u == nil {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f fakeUsers) DeleteByUUID(ctx context.Context, userUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.UUID == userUUID {
			f.users = append(f.users[:i], f.users[i+1:]...)
			for _, m := range f.members {
				delete(m, userUUID)
			}
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

type fakeProjects struct{ *store }

func (f fakeProjects) List(ctx context.Context) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f fakeProjects) Create(ctx context.Context, project *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if project.UUID == "" {
		project.UUID = uuid.NewString()
	}
	f.projects = append(f.projects, project)
	return nil
}

func (f fakeProjects) FindByUUID(ctx context.Context, projectUUID string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.project(projectUUID); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.ErrProjectNotFound
}

func (f fakeProjects) Rename(ctx context.Context, projectUUID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.project(projectUUID)
	if p == nil {
		return apperrors.ErrProjectNotFound
	}
	p.Name = name
	return nil
}

func (f fakeProjects) DeleteByUUID(ctx context.Context, projectUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.UUID == projectUUID {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			delete(f.members, projectUUID)
			return nil
		}
	}
	return apperrors.ErrProjectNotFound
}

func (f fakeProjects) ListForUser(ctx context.Context, userUUID string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Project
	for _, p := range f.projects {
		if f.members[p.UUID][userUUID] {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakeProjects) ListMembers(ctx context.Context, projectUUID string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if f.members[projectUUID][u.UUID] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f fakeProjects) ListProjectMembers(ctx context.Context, projectUUID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for userUUID := range f.members[projectUUID] {
		out = append(out, userUUID)
	}
	return out, nil
}

func (f fakeProjects) AddMember(ctx context.Context, projectUUID, userUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.project(projectUUID) == nil {
		return apperrors.ErrProjectNotFound
	}
	if f.user(userUUID) == nil {
		return apperrors.ErrUserNotFound
	}
	if f.members[projectUUID] == nil {
		f.members[projectUUID] = map[string]bool{}
	}
	f.members[projectUUID][userUUID] = true
	return nil
}

func (f fakeProjects) RemoveMember(ctx context.Context, projectUUID, userUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.members[projectUUID][userUUID] {
		return apperrors.ErrProjectOrUserNotFound
	}
	delete(f.members[projectUUID], userUUID)
	return nil
}
