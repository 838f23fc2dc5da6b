package db_client

import (
	"context"
	"fmt"
	decimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/database/migrations"
	"github.com/mufasadev/contribution-reconciler/pkg/postgresql"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"strconv"
	"time"
)

const migrateRetryDelay = time.Second

type PGClient struct {
	cfg           config.PostgreSQL
	runMigrations func(dsn string) error
	retryDelay    time.Duration
}

func NewPGClient(cfg config.PostgreSQL) *PGClient {
	return &PGClient{cfg: cfg, runMigrations: migrations.Run, retryDelay: migrateRetryDelay}
}

// Connect connects to the database and returns a pgxpool.Pool.
func (c *PGClient) Connect() (*pgxpool.Pool, error) {
	pgxConfig, err := pgxpool.ParseConfig(c.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	// Register decimal type
	pgxConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		decimal.Register(conn.TypeMap())
		return nil
	}

	maxAttempts, err := strconv.Atoi(c.cfg.MaxConnAttempts)
	if err != nil {
		return nil, fmt.Errorf("strconv.Atoi: %w", err)
	}

	db, err := postgresql.NewClient(pgxConfig, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("postgresql.NewClient: %w", err)
	}

	return db, nil
}

// Migrate applies the embedded schema migrations when DB_AUTO_MIGRATE is set,
// retrying up to DB_MAX_CONN_ATTEMPTS times while the database comes up.
func (c *PGClient) Migrate() error {
	enabled, err := strconv.ParseBool(c.cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("invalid DB_AUTO_MIGRATE %q: %w", c.cfg.AutoMigrate, err)
	}
	if !enabled {
		return nil
	}

	maxAttempts, err := strconv.Atoi(c.cfg.MaxConnAttempts)
	if err != nil {
		return fmt.Errorf("strconv.Atoi: %w", err)
	}

	dsn := c.cfg.MigrationDSN()
	return repeat.Repeat(func() error {
		return c.runMigrations(dsn)
	}, maxAttempts, c.retryDelay)
}
