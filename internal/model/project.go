package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a tenant boundary; errors and issues reported by an SDK belong to one project.
type Project struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"type:char(36);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	APIKey    string    `json:"-" gorm:"type:char(36);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID and API key before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if p.APIKey == "" {
		p.APIKey = uuid.NewString()
	}
	return nil
}

// ProjectUser grants a non-root user access to a project.
type ProjectUser struct {
	ProjectID uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// TableName keeps the join table name used by the existing schema.
func (ProjectUser) TableName() string {
	return "projects_users"
}
