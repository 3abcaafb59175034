package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/NordCoder/Authly/internal/domain/session"

	"github.com/redis/go-redis/v9"
)

var _ session.Store = (*TokenStore)(nil)

const keyPrefix = "refresh:"

type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TokenStore keeps refresh-token records in Redis, keyed by exact token
// value. Records carry a TTL matching the refresh TTL so revocation state
// does not outlive the tokens it guards.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *TokenStore) Create(ctx context.Context, token string, userID int64) error {
	if err := s.client.Set(ctx, keyPrefix+token, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh token set: %w", err)
	}
	return nil
}

func (s *TokenStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("refresh token exists: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("refresh token del: %w", err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
