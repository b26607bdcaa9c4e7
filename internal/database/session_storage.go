package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStorage keeps one serialized booking state per session.
// Every save renews the TTL, so a session lives as long as it is used.
type RedisSessionStorage struct {
	cache *RedisClient
	ttl   time.Duration
}

// NewRedisSessionStorage creates a new Redis-backed session storage
func NewRedisSessionStorage(cache *RedisClient, ttl time.Duration) *RedisSessionStorage {
	return &RedisSessionStorage{cache: cache, ttl: ttl}
}

// Load returns the saved state of a session, or nil when there is none
func (s *RedisSessionStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.cache.Get(ctx, GenerateSessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return data, nil
}

// Save stores the state of a session and renews its TTL
func (s *RedisSessionStorage) Save(ctx context.Context, sessionID string, data []byte) error {
	if err := s.cache.Set(ctx, GenerateSessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes the state of a session
func (s *RedisSessionStorage) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, GenerateSessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}
