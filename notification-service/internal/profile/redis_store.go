package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string // e.g. user:profile:
}

// Redis key pattern:
// {prefix}{user_id}   HASH
//   - is_online:         "true" | "false" | "1" | "0"
//   - current_chat_room: opaque room string
//   - fcm_token:         device registration token

const (
	fieldIsOnline        = "is_online"
	fieldCurrentChatRoom = "current_chat_room"
	fieldFCMToken        = "fcm_token"
)

type redisStore struct {
	client    redis.Cmdable
	closer    func() error
	keyPrefix string
}

// NewRedisStore creates a Redis-backed profile store.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, client.Close, cfg.KeyPrefix), nil
}

func newRedisStore(client redis.Cmdable, closer func() error, prefix string) *redisStore {
	if prefix == "" {
		prefix = "user:profile:"
	}
	return &redisStore{client: client, closer: closer, keyPrefix: prefix}
}

func (s *redisStore) key(userID string) string {
	return s.keyPrefix + userID
}

func (s *redisStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	vals, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}
	if len(vals) == 0 {
		return nil, ErrProfileNotFound
	}
	return profileFromHash(userID, vals), nil
}

func (s *redisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// profileFromHash maps hash fields to a profile. An unparsable is_online
// reads as offline.
func profileFromHash(userID string, vals map[string]string) *domain.UserProfile {
	online, _ := strconv.ParseBool(vals[fieldIsOnline])
	return &domain.UserProfile{
		UserID:   userID,
		FCMToken: vals[fieldFCMToken],
		UserPresence: domain.UserPresence{
			IsOnline:        online,
			CurrentChatRoom: vals[fieldCurrentChatRoom],
		},
	}
}
