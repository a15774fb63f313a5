// Package gormdb backs the user and work-item stores with gorm, on either
// SQLite (local development) or MySQL.
package gormdb

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

type userModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex:ux_users_username;size:100;not null"`
	Email        string    `gorm:"uniqueIndex:ux_users_email;size:255;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (userModel) TableName() string { return "users" }

type workItemModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"size:2000"`
	Status      int       `gorm:"not null;index:ix_work_items_status"`
	Priority    int       `gorm:"not null;index:ix_work_items_priority"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index:ix_work_items_created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (workItemModel) TableName() string { return "work_items" }

// Open connects to dialect at dsn. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dialect, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	case DialectMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("gormdb: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb open: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the users and work_items tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &workItemModel{}); err != nil {
		return fmt.Errorf("gormdb migrate: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
