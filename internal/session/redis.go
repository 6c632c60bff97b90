package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore keeps session state in Redis under prefix+userID. Keys expire
// after ttl of inactivity; a zero ttl disables expiry.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "session_store", "backend", "redis"),
	}
}

func (s *redisStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *redisStore) Load(ctx context.Context, userID int64) (State, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session for user %d: %w", userID, err)
	}

	state, err := decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Discarding corrupt session state", "user_id", userID, "error", err)
		return State{}, nil
	}
	return state, nil
}

func (s *redisStore) Save(ctx context.Context, userID int64, state State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session for user %d: %w", userID, err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session for user %d: %w", userID, err)
	}
	return nil
}

// Purge is a no-op: Redis expires keys on its own.
func (s *redisStore) Purge(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
