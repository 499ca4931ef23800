//go:build integration

package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) (*goredis.Client, func()) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())

	return client, func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
}

func TestTokenStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedisContainer(t)
	defer cleanup()
	ctx := context.Background()

	store, err := NewTokenStore(client, "mensajero-1")
	require.NoError(t, err)
	require.Equal(t, "pharmactl:mensajero-1:accessToken", store.Key())

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "tok"))
	token, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", token)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
