package cache

import (
	"fmt"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/pkg/redisdb"
	"github.com/redis/go-redis/v9"
	"strconv"
)

type RedisClient struct {
	cfg config.Redis
}

func NewRedisClient(cfg config.Redis) *RedisClient {
	return &RedisClient{cfg: cfg}
}

// Connect dials redis and pings it until it answers or the attempts run out.
func (c *RedisClient) Connect() (*redis.Client, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}

	maxAttempts, err := strconv.Atoi(c.cfg.MaxConnAttempts)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_MAX_CONN_ATTEMPTS %q: %w", c.cfg.MaxConnAttempts, err)
	}

	client, err := redisdb.NewClient(opts, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("redisdb.NewClient: %w", err)
	}

	return client, nil
}

// Lazy returns a client that dials on first use. Commands against an
// unreachable server fail, which the lock guard treats as fail open.
func (c *RedisClient) Lazy() (*redis.Client, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = redisdb.ClientTimeout
	opts.ReadTimeout = redisdb.ClientTimeout
	opts.WriteTimeout = redisdb.ClientTimeout
	return redis.NewClient(opts), nil
}

func (c *RedisClient) options() (*redis.Options, error) {
	db, err := strconv.Atoi(c.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB %q: %w", c.cfg.DB, err)
	}
	return &redis.Options{
		Addr:     c.cfg.Addr,
		Password: c.cfg.Password,
		DB:       db,
	}, nil
}
