package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMirror copies usage counters into Redis hashes:
//
//	{prefix}:current              route -> count for the open period
//	{prefix}:period:{yyyymmddhh}  route -> final count of a closed period
type RedisMirror struct {
	rdb       redis.Cmdable
	prefix    string
	retention time.Duration
}

// RedisOption configures a RedisMirror.
type RedisOption func(*RedisMirror)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(m *RedisMirror) { m.prefix = strings.Trim(prefix, ":") }
}

// WithRetention sets how long closed periods are kept. Zero keeps them.
func WithRetention(d time.Duration) RedisOption {
	return func(m *RedisMirror) { m.retention = d }
}

// NewRedisMirror creates a RedisMirror.
func NewRedisMirror(rdb redis.Cmdable, opts ...RedisOption) *RedisMirror {
	m := &RedisMirror{
		rdb:       rdb,
		prefix:    "pricing:usage",
		retention: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RedisMirror) currentKey() string {
	return m.prefix + ":current"
}

func (m *RedisMirror) periodKey(start time.Time) string {
	return fmt.Sprintf("%s:period:%s", m.prefix, start.UTC().Format("2006010215"))
}

// Incr implements Mirror.
func (m *RedisMirror) Incr(ctx context.Context, route string) error {
	return m.rdb.HIncrBy(ctx, m.currentKey(), route, 1).Err()
}

// Rotate implements Mirror.
func (m *RedisMirror) Rotate(ctx context.Context, final map[string]int64, periodStart time.Time) error {
	pipe := m.rdb.TxPipeline()
	if len(final) > 0 {
		key := m.periodKey(periodStart)
		values := make(map[string]any, len(final))
		for route, n := range final {
			values[route] = n
		}
		pipe.HSet(ctx, key, values)
		if m.retention > 0 {
			pipe.Expire(ctx, key, m.retention)
		}
	}
	pipe.Del(ctx, m.currentKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rotate usage period: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.rdb.Ping(ctx).Err()
}
