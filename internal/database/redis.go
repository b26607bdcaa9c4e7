package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key does not exist
var ErrCacheMiss = errors.New("key not found")

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisClient represents the Redis client
type RedisClient struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Println("Successfully connected to Redis")
	return &RedisClient{client}, nil
}

// WrapRedisClient wraps an existing client
func WrapRedisClient(client *redis.Client) *RedisClient {
	return &RedisClient{client}
}

// Close closes the Redis connection
func (rc *RedisClient) Close() error {
	return rc.Client.Close()
}

// SetJSON sets a JSON value in Redis with expiration
func (rc *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return rc.Set(ctx, key, jsonData, expiration).Err()
}

// GetJSON gets a JSON value from Redis
func (rc *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
		return fmt.Errorf("failed to get from Redis: %w", err)
	}

	return json.Unmarshal(data, dest)
}

// TakeJSON gets a JSON value and deletes the key in one step
func (rc *RedisClient) TakeJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := rc.GetDel(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
		return fmt.Errorf("failed to take from Redis: %w", err)
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key from Redis
func (rc *RedisClient) Delete(ctx context.Context, key string) error {
	return rc.Del(ctx, key).Err()
}

// GenerateSessionKey generates the key holding the booking state of a session
func GenerateSessionKey(sessionID string) string {
	return fmt.Sprintf("booking_state:%s", sessionID)
}

// GenerateSearchCacheKey generates a cache key for flight search results
func GenerateSearchCacheKey(criteriaKey string) string {
	return fmt.Sprintf("flight_search:%s", criteriaKey)
}

// GenerateAirportCacheKey generates a cache key for airport lookups
func GenerateAirportCacheKey(keyword string) string {
	return fmt.Sprintf("airport_search:%s", strings.ToLower(strings.TrimSpace(keyword)))
}

// GenerateSummaryKey generates the key of the one-shot booking summary handoff.
// The key is scoped to the session that confirmed the booking.
func GenerateSummaryKey(sessionID, bookingReference string) string {
	return fmt.Sprintf("booking_summary:%s:%s", sessionID, bookingReference)
}
