package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Repo = (*RedisRepo)(nil)

// RedisConfig holds the connection settings for a single node Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection with a PING.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("no Redis address provided")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisRepo keeps the credential fields in a single Redis hash so that Save can
// write them in one MULTI/EXEC transaction.
type RedisRepo struct {
	client redis.UniversalClient
	key    string
}

func NewRedisRepo(client redis.UniversalClient, key string) *RedisRepo {
	return &RedisRepo{client: client, key: key}
}

func (r *RedisRepo) Get(ctx context.Context, key Key) (string, error) {
	value, err := r.client.HGet(ctx, r.key, string(key)).Result()
	if err == redis.Nil {
		return "", errors.Wrapf(errors.ErrNotFound, "credential %q", key)
	}
	if err != nil {
		return "", errors.Wrapf(errors.ErrStoreUnavailable, "hget %s: %v", key, err)
	}
	return value, nil
}

func (r *RedisRepo) Set(ctx context.Context, key Key, value string) error {
	if err := r.client.HSet(ctx, r.key, string(key), value).Err(); err != nil {
		return errors.Wrapf(errors.ErrStoreUnavailable, "hset %s: %v", key, err)
	}
	return nil
}

func (r *RedisRepo) Remove(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, fieldNames(keys)...).Err(); err != nil {
		return errors.Wrapf(errors.ErrStoreUnavailable, "hdel: %v", err)
	}
	return nil
}

func (r *RedisRepo) Save(ctx context.Context, entry Entry) error {
	values := hashValues(entry)
	if len(values) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, values)
		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrStoreUnavailable, "save credentials: %v", err)
	}
	return nil
}

// Replace drops the hash and writes the entry in the same MULTI/EXEC.
func (r *RedisRepo) Replace(ctx context.Context, entry Entry) error {
	values := hashValues(entry)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrStoreUnavailable, "replace credentials: %v", err)
	}
	return nil
}

func (r *RedisRepo) Load(ctx context.Context) (Entry, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Entry{}, errors.Wrapf(errors.ErrStoreUnavailable, "hgetall: %v", err)
	}

	fields := make(map[Key]string, len(values))
	for field, value := range values {
		fields[Key(field)] = value
	}
	return EntryFromFields(fields), nil
}

func hashValues(entry Entry) map[string]interface{} {
	fields := entry.Fields()
	values := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		values[string(key)] = value
	}
	return values
}

func fieldNames(keys []Key) []string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, string(key))
	}
	return names
}
