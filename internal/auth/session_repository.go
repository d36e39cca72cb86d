package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// RedisSessionStore keeps session records in Redis with a TTL matching the token lifetime
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func accountSessionsKey(accountID uuid.UUID) string {
	return fmt.Sprintf("account_sessions:%s", accountID.String())
}

// Create stores a new session for the account and returns its ID
func (s *RedisSessionStore) Create(ctx context.Context, accountID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("session ttl must be positive")
	}

	sessionID := uuid.NewString()
	key := sessionKey(sessionID)
	setKey := accountSessionsKey(accountID)
	now := time.Now()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"account_id": accountID.String(),
		"created_at": now.Unix(),
		"expires_at": now.Add(ttl).Unix(),
	})
	pipe.Expire(ctx, key, ttl)
	pipe.SAdd(ctx, setKey, sessionID)
	// the index lives as long as the newest session
	pipe.Expire(ctx, setKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Get returns the account owning the session
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (uuid.UUID, error) {
	value, err := s.client.HGet(ctx, sessionKey(sessionID), "account_id").Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	accountID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse session account id: %w", err)
	}

	return accountID, nil
}

// Delete removes a session; deleting a missing session is not an error
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	accountID, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, accountSessionsKey(accountID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteAllForAccount removes every session of the account
func (s *RedisSessionStore) DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	setKey := accountSessionsKey(accountID)

	sessionIDs, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list account sessions: %w", err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, id := range sessionIDs {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, setKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete account sessions: %w", err)
	}

	return nil
}
