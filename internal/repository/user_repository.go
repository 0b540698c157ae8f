package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
)

// UserRepository defines persistence operations for users. It is the credential store of the
// auth layer: lookups by email for login and root status for token refresh.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUUID(ctx context.Context, userUUID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	IsRoot(ctx context.Context, userUUID string) (bool, error)
	SetRoot(ctx context.Context, userUUID string, isRoot bool) error
	UpdatePassword(ctx context.Context, userUUID, passwordHash string) error
	DeleteByUUID(ctx context.Context, userUUID string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts user. A concurrent insert of the same email returns ErrUserAlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) FindByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// IsRoot reads only the root flag of a user.
func (r *userRepository) IsRoot(ctx context.Context, userUUID string) (bool, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("is_root").Where("uuid = ?", userUUID).Take(&user).Error
	if err != nil {
		return false, notFound(err, apperrors.ErrUserNotFound)
	}
	return user.IsRoot, nil
}

func (r *userRepository) SetRoot(ctx context.Context, userUUID string, isRoot bool) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("uuid = ?", userUUID).Update("is_root", isRoot)
	return affected(res, apperrors.ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userUUID, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("uuid = ?", userUUID).Update("password_hash", passwordHash)
	return affected(res, apperrors.ErrUserNotFound)
}

// DeleteByUUID removes the user together with its project memberships.
func (r *userRepository) DeleteByUUID(ctx context.Context, userUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.ProjectUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// notFound translates gorm.ErrRecordNotFound into the given domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func affected(res *gorm.DB, domainErr error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainErr
	}
	return nil
}
