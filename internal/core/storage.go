package core

import (
	"fmt"
	"os"

	"panrgp/internal/infra/persistence/memory"
	"panrgp/internal/infra/persistence/postgres"
	"panrgp/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and parameterizes a persistent store.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// StorageConfigFromEnv reads the storage configuration.
//
//	PANRGP_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	PANRGP_SQLITE_PATH: path to sqlite file (default ./panrgp.db)
//	PANRGP_POSTGRES_DSN: postgres DSN when driver=postgres
func StorageConfigFromEnv() StorageConfig {
	driver := os.Getenv("PANRGP_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	return StorageConfig{
		Driver:      StorageDriver(driver),
		SQLitePath:  os.Getenv("PANRGP_SQLITE_PATH"),
		PostgresDSN: os.Getenv("PANRGP_POSTGRES_DSN"),
	}
}

// OpenPersistentStore selects a backend using environment variables.
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	return OpenPersistentStoreConfig(StorageConfigFromEnv(), engine)
}

// OpenPersistentStoreConfig builds the backend described by cfg.
func OpenPersistentStoreConfig(cfg StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	switch cfg.Driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite, "":
		store, err := sqlite.NewStore(cfg.SQLitePath, engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(cfg.PostgresDSN, engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
