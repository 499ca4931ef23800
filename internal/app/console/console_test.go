package console

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/devserver"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/file"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/memory"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
)

func startBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := devserver.NewStore()
	require.NoError(t, devserver.Seed(store))
	issuer, err := devserver.NewIssuer("console-secret", time.Hour, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(devserver.NewServer(store, issuer).Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

func testConfig(url string) Config {
	return Config{APIURL: url, TokenStore: StoreMemory, Profile: "default", MonitorInterval: time.Second, ScanTimeout: time.Second, LogLevel: "info"}
}

func TestNew_LoginLogoutRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var moves []string
	c, err := New(context.Background(), testConfig(startBackend(t)), nil,
		WithStartPath(navigation.LoginPath),
		WithNavigationHook(func(_, to string) {
			mu.Lock()
			defer mu.Unlock()
			moves = append(moves, to)
		}))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	identity, err := c.Session.Login(context.Background(), devserver.OperatorEmail, devserver.SeedPassword)
	require.NoError(t, err)
	require.True(t, identity.IsOperator())

	pending, err := c.Orders.PendingValidation(context.Background())
	require.NoError(t, err)
	require.Empty(t, pending)

	require.NoError(t, c.Session.Logout(context.Background()))
	_, ok, err := c.Tokens.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{navigation.HomePath, navigation.LoginPath}, moves)
}

func TestNew_UnauthorizedExpiresSession(t *testing.T) {
	tokens := memory.NewTokenStore()
	c, err := New(context.Background(), testConfig(startBackend(t)), nil, WithTokenStore(tokens))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.Session.Login(context.Background(), devserver.AdminEmail, devserver.SeedPassword)
	require.NoError(t, err)
	identity, err := c.Session.Current(context.Background())
	require.NoError(t, err)
	require.True(t, identity.IsAdmin())

	require.NoError(t, tokens.Set(context.Background(), "revoked"))
	_, err = c.Closing.FinishedRoutes(context.Background())
	require.Error(t, err)

	identity, err = c.Session.Current(context.Background())
	require.NoError(t, err)
	require.False(t, identity.IsAuthenticated())
	require.Equal(t, navigation.LoginPath, c.Nav.CurrentPath())
}

func TestNew_FallsBackToFileStore(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	cfg.TokenStore = StorePostgres
	cfg.TokenFile = filepath.Join(t.TempDir(), "credentials.json")
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	store, ok := c.Tokens.(*file.TokenStore)
	require.True(t, ok)
	require.Equal(t, cfg.TokenFile, store.Path())

	cfg.TokenStore = StoreRedis
	c, err = New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	_, ok = c.Tokens.(*file.TokenStore)
	require.True(t, ok)
}
