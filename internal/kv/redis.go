package kv

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

var _ Store = (*RedisStore)(nil)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "postdeck:".
	Prefix string
}

// RedisStore keeps each key as a plain Redis string.
type RedisStore struct {
	inner  *redis.Client
	addr   string
	prefix string
}

// NewRedisStore builds a client for opts. No connection is made until the
// first command; use Ping to check reachability.
func NewRedisStore(opts RedisOptions) *RedisStore {
	return &RedisStore{
		inner: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		addr:   opts.Addr,
		prefix: opts.Prefix,
	}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.inner.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	// Zero expiration: the slot lives until overwritten.
	return r.inner.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx).Err()
}

func (*RedisStore) Backend() string { return "redis" }

// Location returns the server address and key prefix.
func (r *RedisStore) Location() string { return r.addr + "/" + r.prefix }

func (r *RedisStore) Close() error {
	return r.inner.Close()
}
