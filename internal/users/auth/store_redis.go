// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/constants"
)

// RedisSessionRepository implements SessionRepository using Redis.
//
// Each session is a single key mapping the hashed refresh token to its userID.
// Expiry is handled entirely by Redis TTLs, so rotation and logout are the
// only explicit deletions.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Create stores a session mapping the token hash to a userID with TTL.

Parameters:
  - context: context.Context
  - tokenHash: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisSessionRepository) Create(context context.Context, tokenHash string, userID string, ttl time.Duration) error {

	// Use constants for key prefix
	key := constants.RedisPrefixSession + tokenHash

	// Set the session with TTL
	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
FindUserID resolves the userID for a given token hash.

Description: Returns apperr.NotFound if the session is absent or expired.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: Original UserID
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisSessionRepository) FindUserID(context context.Context, tokenHash string) (string, error) {

	// Use constants for key prefix
	key := constants.RedisPrefixSession + tokenHash

	// Get the session from Redis
	userID, err := repository.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Session is invalid or expired")
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Return the userID
	return userID, nil
}

/*
Delete removes the session from Redis.

Description: Deleting an absent key is a no-op, which keeps logout idempotent.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {

	// Use constants for key prefix
	key := constants.RedisPrefixSession + tokenHash

	// Delete the session from Redis
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
