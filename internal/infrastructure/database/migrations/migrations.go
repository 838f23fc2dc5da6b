package migrations

import (
	"embed"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
)

//go:embed sql/*.sql
var files embed.FS

// Run applies every pending up migration. dsn must use the pgx5:// scheme.
func Run(dsn string) error {
	logger := log.Component("migrations")

	source, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("migrate.NewWithSourceInstance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			logger.Warn().Err(sourceErr).Msg("migration source close")
		}
		if dbErr != nil {
			logger.Warn().Err(dbErr).Msg("migration database close")
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info().Msg("database migrations up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info().Uint("version", version).Msg("database migrations applied")
	return nil
}
