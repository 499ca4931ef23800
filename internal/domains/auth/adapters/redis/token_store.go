package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

// TokenStore keeps the token in Redis under pharmactl:<profile>:accessToken,
// for courier terminals that hand a session over between devices.
type TokenStore struct {
	client *goredis.Client
	key    string
}

func NewTokenStore(client *goredis.Client, profile string) (*TokenStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{client: client, key: fmt.Sprintf("pharmactl:%s:%s", profile, authports.TokenKey)}, nil
}

func (s *TokenStore) Key() string { return s.key }

func (s *TokenStore) Set(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, 0).Err()
}

func (s *TokenStore) Get(ctx context.Context) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, value != "", nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

var _ authports.TokenStore = (*TokenStore)(nil)
