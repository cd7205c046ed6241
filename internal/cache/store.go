// Package cache memoizes analytics responses. Backends are
// interchangeable: in-process memory for a single node, redis when the
// API runs behind a balancer.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
