package redisdb

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"github.com/redis/go-redis/v9"
	"time"
)

const ClientTimeout = 3 * time.Second

// NewClient creates a redis client and pings it, retrying up to
// maxConnAttempts times.
func NewClient(opts *redis.Options, maxConnAttempts int) (*redis.Client, error) {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = ClientTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = ClientTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = ClientTimeout
	}

	client := redis.NewClient(opts)
	err := repeat.Repeat(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), ClientTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}, maxConnAttempts, time.Second)

	if err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
