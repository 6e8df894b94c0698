package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"resham-cricketer/pkg/models"
)

// Open connects to the database and migrates the document tables.
func Open(dialect, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if dialect == "sqlite3" {
		// a single connection keeps in-memory databases shared and
		// serializes sqlite writers
		db.DB().SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Credential{},
		&models.Video{},
		&models.Notification{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
