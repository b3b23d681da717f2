package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
)

const redisKeyPrefix = "folio:portfolio:"

// RedisBackend stores portfolios as JSON values in Redis. The ttl hint
// maps onto Redis native expiration; a zero ttl stores without expiry.
type RedisBackend struct {
	client redis.UniversalClient
}

var _ repositories.Backend = (*RedisBackend)(nil)

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// NewRedisClient connects to a single Redis node and verifies the
// connection before returning.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (b *RedisBackend) Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio %s: %w", id, err)
	}
	return b.client.Set(ctx, redisKeyPrefix+id, payload, ttl).Err()
}

func (b *RedisBackend) Get(ctx context.Context, id string) (*entities.Portfolio, error) {
	payload, err := b.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p entities.Portfolio
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio %s: %w", id, err)
	}
	return &p, nil
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.client.Del(ctx, redisKeyPrefix+id).Err()
}
