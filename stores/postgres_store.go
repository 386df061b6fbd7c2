package stores

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(config *StoreConfig) (*GormStore, error) {
	if config.Type != "postgres" {
		return nil, fmt.Errorf("invalid store type for PostgreSQL store: %s", config.Type)
	}

	dsn := config.Connection
	store := &GormStore{
		open: func() (*gorm.DB, error) {
			db, err := gorm.Open(postgres.Open(dsn), gormConfig(config))
			if err != nil {
				return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
			}
			return db, nil
		},
	}

	if err := store.Connect(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreSimple creates a new PostgreSQL store with just a DSN
func NewPostgresStoreSimple(dsn string) (*GormStore, error) {
	return NewPostgresStore(NewStoreConfig("postgres", dsn))
}
