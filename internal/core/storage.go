package core

import (
	"fmt"
	"os"

	"unitcore/internal/infra/persistence/memory"
	"unitcore/internal/infra/persistence/postgres"
	"unitcore/internal/infra/persistence/sqlite"
)

// StorageDriver selects a persistence backend.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Environment variables controlling backend selection.
const (
	EnvStorageDriver = "UNITCORE_STORAGE_DRIVER"
	EnvSQLitePath    = "UNITCORE_SQLITE_PATH"
	EnvPostgresDSN   = "UNITCORE_POSTGRES_DSN"
)

// StorageConfig carries backend selection and connection settings.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// StorageConfigFromEnv reads backend settings from the environment. The
// driver defaults to sqlite when unset.
func StorageConfigFromEnv() StorageConfig {
	cfg := StorageConfig{
		Driver:      StorageDriver(os.Getenv(EnvStorageDriver)),
		SQLitePath:  os.Getenv(EnvSQLitePath),
		PostgresDSN: os.Getenv(EnvPostgresDSN),
	}
	if cfg.Driver == "" {
		cfg.Driver = StorageDriverSQLite
	}
	return cfg
}

// OpenPersistentStore opens the configured backend with the default rules
// engine installed.
func OpenPersistentStore(cfg StorageConfig) (PersistentStore, error) {
	engine := NewDefaultRulesEngine()
	switch cfg.Driver {
	case StorageDriverMemory:
		return memory.NewStore(engine), nil
	case StorageDriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StorageDriverPostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
