package stores

import (
	"fmt"
)

// NewStore creates a new store based on the configuration
func NewStore(config *StoreConfig) (*GormStore, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteStore(config)
	case "postgres":
		return NewPostgresStore(config)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// NewSQLiteStoreDefault creates a SQLite store with default settings
func NewSQLiteStoreDefault() (*GormStore, error) {
	return NewSQLiteStoreSimple("fleetassist.sqlite")
}
