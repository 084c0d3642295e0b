package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchbook/matchbook-api/internal/journal"
)

// NewDatabase opens the journal database and runs migrations
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&journal.OrderEvent{}); err != nil {
		return nil, err
	}

	return db, nil
}
