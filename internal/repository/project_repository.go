package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
)

// ProjectRepository defines persistence operations for projects and their members.
type ProjectRepository interface {
	List(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	FindByUUID(ctx context.Context, projectUUID string) (*model.Project, error)
	Rename(ctx context.Context, projectUUID, name string) error
	DeleteByUUID(ctx context.Context, projectUUID string) error
	ListForUser(ctx context.Context, userUUID string) ([]model.Project, error)

	ListMembers(ctx context.Context, projectUUID string) ([]model.User, error)
	ListProjectMembers(ctx context.Context, projectUUID string) ([]string, error)
	AddMember(ctx context.Context, projectUUID, userUUID string) error
	RemoveMember(ctx context.Context, projectUUID, userUUID string) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository builds a GORM-backed repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) FindByUUID(ctx context.Context, projectUUID string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("uuid = ?", projectUUID).First(&project).Error; err != nil {
		return nil, notFound(err, apperrors.ErrProjectNotFound)
	}
	return &project, nil
}

func (r *projectRepository) Rename(ctx context.Context, projectUUID, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).Where("uuid = ?", projectUUID).Update("name", name)
	return affected(res, apperrors.ErrProjectNotFound)
}

// DeleteByUUID removes the project together with its memberships.
func (r *projectRepository) DeleteByUUID(ctx context.Context, projectUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Where("uuid = ?", projectUUID).First(&project).Error; err != nil {
			return notFound(err, apperrors.ErrProjectNotFound)
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.ProjectUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

func (r *projectRepository) ListForUser(ctx context.Context, userUUID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN projects_users ON projects_users.project_id = projects.id").
		Joins("JOIN users ON users.id = projects_users.user_id").
		Where("users.uuid = ?", userUUID).
		Order("projects.id").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListMembers(ctx context.Context, projectUUID string) ([]model.User, error) {
	var users []model.User
	err := r.membersQuery(ctx, projectUUID).Order("users.id").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListProjectMembers returns the uuids of users with explicit membership in the project.
// An unknown project has no members.
func (r *projectRepository) ListProjectMembers(ctx context.Context, projectUUID string) ([]string, error) {
	var uuids []string
	if err := r.membersQuery(ctx, projectUUID).Pluck("users.uuid", &uuids).Error; err != nil {
		return nil, err
	}
	return uuids, nil
}

func (r *projectRepository) membersQuery(ctx context.Context, projectUUID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN projects_users ON projects_users.user_id = users.id").
		Joins("JOIN projects ON projects.id = projects_users.project_id").
		Where("projects.uuid = ?", projectUUID)
}

// AddMember grants userUUID access to projectUUID. Adding an existing member is a no-op.
func (r *projectRepository) AddMember(ctx context.Context, projectUUID, userUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Select("id").Where("uuid = ?", projectUUID).Take(&project).Error; err != nil {
			return notFound(err, apperrors.ErrProjectNotFound)
		}
		var user model.User
		if err := tx.Select("id").Where("uuid = ?", userUUID).Take(&user).Error; err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		member := model.ProjectUser{ProjectID: project.ID, UserID: user.ID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectUUID, userUUID string) error {
	db := r.db.WithContext(ctx)
	res := db.
		Where("project_id = (?)", db.Model(&model.Project{}).Select("id").Where("uuid = ?", projectUUID)).
		Where("user_id = (?)", db.Model(&model.User{}).Select("id").Where("uuid = ?", userUUID)).
		Delete(&model.ProjectUser{})
	return affected(res, apperrors.ErrProjectOrUserNotFound)
}
