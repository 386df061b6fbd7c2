package stores

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(config *StoreConfig) (*GormStore, error) {
	if config.Type != "sqlite" {
		return nil, fmt.Errorf("invalid store type for SQLite store: %s", config.Type)
	}

	path := config.Connection
	store := &GormStore{
		open: func() (*gorm.DB, error) {
			db, err := gorm.Open(sqlite.Open(path), gormConfig(config))
			if err != nil {
				return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
			}
			return db, nil
		},
	}

	if err := store.Connect(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewSQLiteStoreSimple creates a new SQLite store with just a file path
func NewSQLiteStoreSimple(dbPath string) (*GormStore, error) {
	return NewSQLiteStore(NewStoreConfig("sqlite", dbPath))
}

func gormConfig(config *StoreConfig) *gorm.Config {
	level := logger.Warn
	if config.Options["log_level"] == "silent" {
		level = logger.Silent
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}
