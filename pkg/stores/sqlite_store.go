package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	// Open database with SQLite-specific connection parameters
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Ensure foreign keys are enabled (connection-level setting)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// UpsertDevice inserts a device record or updates the existing one with
// the same name.
func (s *SQLiteStore) UpsertDevice(ctx context.Context, rec *DeviceRecord) error {
	query := `
		INSERT INTO devices (
			id, name, host, vendor, model, device_type, username, password, template, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			host = excluded.host,
			vendor = excluded.vendor,
			model = excluded.model,
			device_type = excluded.device_type,
			username = excluded.username,
			password = excluded.password,
			template = excluded.template,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Host,
		rec.Vendor,
		rec.Model,
		rec.DeviceType,
		rec.Username,
		rec.Password,
		rec.Template,
		rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		rec.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	return nil
}

// GetDeviceByName retrieves a device record by its unique name
func (s *SQLiteStore) GetDeviceByName(ctx context.Context, name string) (*DeviceRecord, error) {
	query := `
		SELECT id, name, host, vendor, model, device_type, username, password, template, created_at, updated_at
		FROM devices
		WHERE name = ?
	`

	rec := &DeviceRecord{}
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Host,
		&rec.Vendor,
		&rec.Model,
		&rec.DeviceType,
		&rec.Username,
		&rec.Password,
		&rec.Template,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("device not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return rec, nil
}

// ListDevices lists all device records ordered by name
func (s *SQLiteStore) ListDevices(ctx context.Context) ([]*DeviceRecord, error) {
	query := `
		SELECT id, name, host, vendor, model, device_type, username, password, template, created_at, updated_at
		FROM devices
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	records := []*DeviceRecord{}
	for rows.Next() {
		rec := &DeviceRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Host,
			&rec.Vendor,
			&rec.Model,
			&rec.DeviceType,
			&rec.Username,
			&rec.Password,
			&rec.Template,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}

	return records, nil
}

// DeleteDevice deletes a device record by name
func (s *SQLiteStore) DeleteDevice(ctx context.Context, name string) error {
	query := `DELETE FROM devices WHERE name = ?`

	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("device not found: %s", name)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
