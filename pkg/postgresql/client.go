package postgresql

import (
	"context"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"time"
)

const ClientTimeout = 5 * time.Second

type Client interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// NewClient opens a pool and pings it, retrying up to maxConnAttempts times.
func NewClient(cfg *pgxpool.Config, maxConnAttempts int) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := repeat.Repeat(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), ClientTimeout)
		defer cancel()

		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}

		if err = p.Ping(ctx); err != nil {
			p.Close()
			return err
		}

		pool = p
		return nil
	}, maxConnAttempts, ClientTimeout)

	if err != nil {
		return nil, err
	}

	return pool, nil
}
