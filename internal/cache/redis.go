package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airbook/config"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client          *redis.Client
	destinationsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, destinationsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		destinationsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, destinationsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, destinationsTTL: destinationsTTL}
}

// GetDestinations returns nil, nil on a cache miss.
func (c *RedisCache) GetDestinations(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error) {
	data, err := c.client.Get(ctx, destinationsKey(filter)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var destinations []domain.Destination
	if err := json.Unmarshal(data, &destinations); err != nil {
		return nil, err
	}
	return destinations, nil
}

func (c *RedisCache) SetDestinations(ctx context.Context, filter domain.DestinationFilter, destinations []domain.Destination) error {
	payload, err := json.Marshal(destinations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, destinationsKey(filter), payload, c.destinationsTTL).Err()
}

// InvalidateDestinations drops every cached destination listing.
func (c *RedisCache) InvalidateDestinations(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, destinationsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

const destinationsPrefix = "cache:destinations:"

func destinationsKey(filter domain.DestinationFilter) string {
	country := "all"
	if filter.CountryID != nil {
		country = fmt.Sprintf("%d", *filter.CountryID)
	}
	return fmt.Sprintf("%scountry:%s:popular:%t", destinationsPrefix, country, filter.PopularOnly)
}
