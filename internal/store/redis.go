package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
)

// RedisClient is the minimal interface Store depends on.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)

// PoolOptions contains Redis connection pool settings.
type PoolOptions struct {
	PoolSize     int           // Maximum number of connections
	MinIdleConns int           // Minimum idle connections to maintain
	PoolTimeout  time.Duration // Time to wait for a connection from the pool
	ReadTimeout  time.Duration // Timeout for read operations
	WriteTimeout time.Duration // Timeout for write operations
}

// Store reads the masked field configuration from Redis.
type Store struct {
	client    RedisClient
	fieldsKey string
}

// New creates a new Store with the given Redis URL and pool options.
func New(ctx context.Context, redisURL, fieldsKey string, poolOpts *PoolOptions) (*Store, error) {
	if poolOpts == nil {
		return nil, errors.New(constants.ErrPoolOptionsRequired)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrRedisURLParse, err)
	}

	opts.PoolSize = poolOpts.PoolSize
	opts.MinIdleConns = poolOpts.MinIdleConns
	opts.PoolTimeout = poolOpts.PoolTimeout
	opts.ReadTimeout = poolOpts.ReadTimeout
	opts.WriteTimeout = poolOpts.WriteTimeout

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf(constants.ErrRedisConnect, err)
	}

	return &Store{client: client, fieldsKey: fieldsKey}, nil
}

func NewWithClient(client RedisClient, fieldsKey string) (*Store, error) {
	if client == nil {
		return nil, errors.New(constants.ErrRedisClientNil)
	}
	return &Store{client: client, fieldsKey: fieldsKey}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return errors.New(constants.ErrStoreNil)
	}
	if s.client == nil {
		return errors.New(constants.ErrRedisClientNil)
	}
	return s.client.Close()
}

// MaskedFields returns the comma-separated field list stored under the
// configured key. found is false when the key does not exist.
func (s *Store) MaskedFields(ctx context.Context) (fields string, found bool, err error) {
	fields, err = s.client.Get(ctx, s.fieldsKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf(constants.ErrRedisOperation, err)
	}
	return fields, true, nil
}

// ResolveFields picks the field list the masker is built from: the Redis
// value when present, otherwise fallback. source names where it came from.
func ResolveFields(ctx context.Context, s *Store, fallback string) (fields, source string, err error) {
	if s == nil {
		return fallback, SourceEnv, nil
	}
	fields, found, err := s.MaskedFields(ctx)
	if err != nil {
		return "", "", err
	}
	if !found {
		return fallback, SourceEnv, nil
	}
	return fields, SourceRedis, nil
}

// Field configuration sources
const (
	SourceEnv   = "env"
	SourceRedis = "redis"
)
