package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// CredentialStore keeps the credential record of one console profile in
// Redis. Key format: console:<profile>:<key>
type CredentialStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

// NewCredentialStore wraps client. A zero ttl keeps keys until removed.
func NewCredentialStore(client *redis.Client, profile string, ttl time.Duration) *CredentialStore {
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{client: client, profile: profile, ttl: ttl}
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CredentialStore) key(key string) string {
	return fmt.Sprintf("console:%s:%s", s.profile, key)
}
