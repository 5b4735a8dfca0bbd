package database

import (
	"embed"
	"errors"
	"fmt"

	"shareit/internal/config"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending up migration for the active driver.
func (db *DB) Migrate(migrationTable string) error {
	m, err := db.migrator(migrationTable)
	if err != nil {
		return err
	}

	// m.Close is not called: it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		db.logger.Debug().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	}
	return nil
}

// MigrateDown rolls the schema back by steps migrations.
func (db *DB) MigrateDown(migrationTable string, steps int) error {
	m, err := db.migrator(migrationTable)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func (db *DB) migrator(migrationTable string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+db.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver migratedb.Driver
	switch db.driver {
	case config.DriverPostgres:
		driver, err = migratepg.WithInstance(db.DB.DB, &migratepg.Config{MigrationsTable: migrationTable})
	default:
		driver, err = migratesqlite.WithInstance(db.DB.DB, &migratesqlite.Config{MigrationsTable: migrationTable})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrator: %w", err)
	}
	return m, nil
}
