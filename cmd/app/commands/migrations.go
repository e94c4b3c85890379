package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateOptions selects the schema set and how far to move it.
type MigrateOptions struct {
	Driver           string
	ConnectionString string
	// Dir contains one sub-directory per driver: postgresql and mysql.
	Dir string
	// Steps applies that many migrations, rolls back when negative, and applies all when zero.
	Steps int
}

// migrateTarget returns the golang-migrate source and database URLs for opts. The mysql
// driver expects its DSN behind a mysql:// scheme, which DB_CONNECTION_STRING omits.
func migrateTarget(opts MigrateOptions) (sourceURL, databaseURL string, err error) {
	switch opts.Driver {
	case "postgres":
		sourceURL = "file://" + filepath.ToSlash(filepath.Join(opts.Dir, "postgresql"))
		databaseURL = opts.ConnectionString
	case "mysql":
		sourceURL = "file://" + filepath.ToSlash(filepath.Join(opts.Dir, "mysql"))
		databaseURL = opts.ConnectionString
		if !strings.HasPrefix(databaseURL, "mysql://") {
			databaseURL = "mysql://" + databaseURL
		}
	default:
		return "", "", fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}
	return sourceURL, databaseURL, nil
}

// RunMigrations moves the schema according to opts.
func RunMigrations(logger *slog.Logger, opts MigrateOptions) error {
	sourceURL, databaseURL, err := migrateTarget(opts)
	if err != nil {
		return err
	}

	logger.Info("running database migrations",
		slog.String("driver", opts.Driver),
		slog.String("source", sourceURL),
		slog.Int("steps", opts.Steps),
	)

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if opts.Steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(opts.Steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}
