package cache

import (
	"context"
	"errors"
	"fmt"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	"github.com/redis/go-redis/v9"
	"strings"
)

const (
	scanCount      = 200
	deleteBatchLen = 100
)

// RedisCacheInvalidator deletes cached read models. Targets containing glob
// characters are expanded with SCAN, anything else is deleted as a key.
type RedisCacheInvalidator struct {
	client redis.UniversalClient
}

func NewRedisCacheInvalidator(client redis.UniversalClient) repositories.CacheInvalidator {
	return &RedisCacheInvalidator{client: client}
}

func (c *RedisCacheInvalidator) Invalidate(ctx context.Context, targets ...string) error {
	var errs []error
	keys := make([]string, 0, len(targets))

	for _, target := range targets {
		if isPattern(target) {
			if err := c.deletePattern(ctx, target); err != nil {
				errs = append(errs, fmt.Errorf("invalidate %s: %w", target, err))
			}
			continue
		}
		keys = append(keys, target)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			errs = append(errs, fmt.Errorf("invalidate keys: %w", err))
		}
	}

	return errors.Join(errs...)
}

// deletePattern collects every matching key before deleting any, so the SCAN
// cursor never runs over a keyspace it is mutating.
func (c *RedisCacheInvalidator) deletePattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatchLen {
		end := start + deleteBatchLen
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

func isPattern(target string) bool {
	return strings.ContainsAny(target, "*?[")
}
