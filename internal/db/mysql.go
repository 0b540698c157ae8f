package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flytrap/internal/model"
)

// GormConfig returns the GORM settings shared by every connection. Driver errors are
// translated so unique violations surface as gorm.ErrDuplicatedKey.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), GormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// models lists tables in dependency order; reset drops them in reverse.
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Project{},
		&model.ProjectUser{},
	}
}

// Migrate creates or updates the auth schema. With reset set, existing tables are dropped first.
func Migrate(db *gorm.DB, reset bool, log *zap.Logger) error {
	tables := models()
	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				log.Warn("failed to drop table (may not exist)", zap.Error(err))
			}
		}
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
