// Package console wires the client stack used by the operator CLI: token
// store, API gateway, query cache, session and the domain services.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/pharmacy-dispatch/internal/clients/http/pharmacy"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/file"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/memory"
	authobs "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/observability"
	authpostgres "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/persistence/postgres"
	authredis "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/redis"
	authapp "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/application"
	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
	closingapp "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/application"
	deliveryapp "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/application"
	logisticsapp "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/application"
	ordersapp "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/application"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/migrations"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	platformobservability "github.com/Apurer/pharmacy-dispatch/internal/platform/observability"
	platformpostgres "github.com/Apurer/pharmacy-dispatch/internal/platform/postgres"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Console is the wired client stack.
type Console struct {
	Config  Config
	Logger  *slog.Logger
	Nav     *navigation.Router
	Tokens  authports.TokenStore
	Client  *pharmacy.Client
	Cache   *query.Cache
	Manager *authapp.Manager
	Session authports.Session

	Orders    *ordersapp.Service
	Catalog   *logisticsapp.Catalog
	Receiving *logisticsapp.Receiving
	Picking   *logisticsapp.Picking
	Packing   *logisticsapp.Station
	Dispatch  *logisticsapp.Dispatch
	Routes    *logisticsapp.Routes
	Courier   *deliveryapp.Courier
	Closing   *closingapp.Service

	closers []func()
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	tokens     authports.TokenStore
	onNavigate func(from, to string)
	startPath  string
}

// WithHTTPClient replaces the transport used to reach the API.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTokenStore bypasses PHARMACY_TOKEN_STORE.
func WithTokenStore(store authports.TokenStore) Option {
	return func(o *options) { o.tokens = store }
}

// WithNavigationHook is called on every view change, including the global
// logout redirect.
func WithNavigationHook(fn func(from, to string)) Option {
	return func(o *options) { o.onNavigate = fn }
}

// WithStartPath sets the view the console starts on.
func WithStartPath(path string) Option {
	return func(o *options) { o.startPath = path }
}

// New wires the console. instruments may be nil.
func New(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, opts ...Option) (*Console, error) {
	o := options{startPath: navigation.HomePath}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if instruments == nil {
		instruments = platformobservability.Noop()
	}
	c := &Console{Config: cfg, Logger: instruments.Logger}

	var routerOpts []navigation.RouterOption
	if o.onNavigate != nil {
		routerOpts = append(routerOpts, navigation.WithOnChange(o.onNavigate))
	}
	c.Nav = navigation.NewRouter(o.startPath, routerOpts...)

	tokens := o.tokens
	if tokens == nil {
		var err error
		tokens, err = c.buildTokenStore(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Tokens = tokens

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	client, err := pharmacy.NewClient(cfg.APIURL,
		pharmacy.WithHTTPClient(hc),
		pharmacy.WithTokenStore(tokens),
		pharmacy.WithNavigator(c.Nav),
		pharmacy.WithOnUnauthorized(c.expire),
		pharmacy.WithLogger(c.Logger),
		pharmacy.WithTracer(instruments.Tracer("internal.clients.http.pharmacy")),
		pharmacy.WithMeter(instruments.Meter("internal.clients.http.pharmacy")),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build api client: %w", err)
	}
	c.Client = client
	c.Cache = query.New(query.WithLogger(c.Logger))

	c.Manager = authapp.NewManager(tokens, client, c.Cache, c.Nav)
	c.Session = authobs.New(c.Manager,
		authobs.WithLogger(c.Logger),
		authobs.WithTracer(instruments.Tracer("internal.domains.auth.application")),
		authobs.WithMeter(instruments.Meter("internal.domains.auth.application")),
	)

	c.Orders = ordersapp.NewService(client, c.Cache)
	c.Catalog = logisticsapp.NewCatalog(client, c.Cache)
	c.Receiving = logisticsapp.NewReceiving(client, c.Cache)
	c.Picking = logisticsapp.NewPicking(client, c.Cache)
	c.Packing = logisticsapp.NewStation(client, c.Cache)
	c.Dispatch = logisticsapp.NewDispatch(client, client, c.Cache)
	c.Routes = logisticsapp.NewRoutes(client, c.Cache, cfg.MonitorInterval)
	c.Courier = deliveryapp.NewCourier(client, c.Cache)
	c.Closing = closingapp.NewService(client, c.Cache)
	return c, nil
}

func (c *Console) expire() {
	if c.Manager != nil {
		c.Manager.Expire()
	}
}

// Close releases database and redis connections.
func (c *Console) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// buildTokenStore picks the backend named by PHARMACY_TOKEN_STORE. Shared
// backends that cannot be reached fall back to the local file store.
func (c *Console) buildTokenStore(ctx context.Context) (authports.TokenStore, error) {
	switch c.Config.TokenStore {
	case StoreMemory:
		return memory.NewTokenStore(), nil
	case StorePostgres:
		db, cleanup := platformpostgres.Open(ctx, c.Config.PostgresDSN, c.Logger)
		if db != nil {
			if err := migrations.Run(db); err != nil {
				cleanup()
				return nil, fmt.Errorf("migrate token schema: %w", err)
			}
			c.closers = append(c.closers, cleanup)
			c.Logger.Info("token store configured with postgres", slog.String("profile", c.Config.Profile))
			return authpostgres.NewTokenStore(db, c.Config.Profile), nil
		}
		c.Logger.Warn("falling back to file token store", slog.String("path", c.Config.TokenFile))
	case StoreRedis:
		if store, ok := c.redisTokenStore(ctx); ok {
			return store, nil
		}
		c.Logger.Warn("falling back to file token store", slog.String("path", c.Config.TokenFile))
	}
	return file.NewTokenStore(c.Config.TokenFile)
}

func (c *Console) redisTokenStore(ctx context.Context) (authports.TokenStore, bool) {
	if c.Config.RedisAddr == "" {
		c.Logger.Warn("REDIS_ADDR not set, redis token store disabled")
		return nil, false
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: c.Config.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		c.Logger.Warn("failed to connect to redis", slog.String("addr", c.Config.RedisAddr), slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil, false
	}
	store, err := authredis.NewTokenStore(rdb, c.Config.Profile)
	if err != nil {
		_ = rdb.Close()
		return nil, false
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	c.Logger.Info("token store configured with redis", slog.String("key", store.Key()))
	return store, true
}
