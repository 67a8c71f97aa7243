package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 2 * time.Minute

// RedisCache keeps the latest quote of every exchange/symbol pair under
// "latest:<exchange>:<symbol>" and indexes exchanges per symbol in
// "exchanges:<symbol>".
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func latestKey(exchange, symbol string) string {
	return fmt.Sprintf("latest:%s:%s", exchange, symbol)
}

func exchangesKey(symbol string) string {
	return fmt.Sprintf("exchanges:%s", symbol)
}

func (c *RedisCache) SetLatestQuotes(ctx context.Context, quotes []models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, quote := range quotes {
		data, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("failed to marshal quote: %w", err)
		}
		pipe.Set(ctx, latestKey(quote.Exchange, quote.Symbol), data, c.ttl)
		pipe.SAdd(ctx, exchangesKey(quote.Symbol), quote.Exchange)
		pipe.Expire(ctx, exchangesKey(quote.Symbol), c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store quotes in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) GetLatestQuote(ctx context.Context, exchange, symbol string) (*models.PriceQuote, error) {
	data, err := c.client.Get(ctx, latestKey(exchange, symbol)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest quote from redis: %w", err)
	}

	var quote models.PriceQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &quote, nil
}

// GetLatestQuotes returns the unexpired quotes for symbol keyed by exchange.
func (c *RedisCache) GetLatestQuotes(ctx context.Context, symbol string) (map[string]models.PriceQuote, error) {
	exchanges, err := c.client.SMembers(ctx, exchangesKey(symbol)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges for %s: %w", symbol, err)
	}

	quotes := make(map[string]models.PriceQuote, len(exchanges))
	for _, exchange := range exchanges {
		quote, err := c.GetLatestQuote(ctx, exchange, symbol)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			quotes[exchange] = *quote
		}
	}
	return quotes, nil
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
