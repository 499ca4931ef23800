package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

var (
	// ErrNotAuthenticated is returned by Guard for protected views without a usable token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrCredentialsRequired signals an empty username or password.
	ErrCredentialsRequired = errors.New("username and password are required")
)

// PublicPaths are views reachable without a token.
var PublicPaths = []string{navigation.LoginPath, "/nuevo-pedido"}

// Manager derives the identity from the token store and drives the
// Unauthenticated <-> Authenticated transitions.
type Manager struct {
	store ports.TokenStore
	api   ports.Authenticator
	cache *query.Cache
	nav   navigation.Navigator
	now   func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store ports.TokenStore, api ports.Authenticator, cache *query.Cache, nav navigation.Navigator, opts ...Option) *Manager {
	m := &Manager{store: store, api: api, cache: cache, nav: nav, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.cache == nil {
		m.cache = query.New()
	}
	if m.nav == nil {
		m.nav = navigation.NewRouter(navigation.HomePath)
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Current returns the identity for the stored token. A missing, undecodable
// or expired token yields the anonymous identity and leaves the store empty.
// No network call is made.
func (m *Manager) Current(ctx context.Context) (domain.Identity, error) {
	identity, err := query.Fetch(ctx, m.cache, query.AuthUser(), m.derive)
	if err != nil {
		return domain.Anonymous, err
	}
	if identity.IsAuthenticated() && identity.ExpiredAt(m.now()) {
		if err := m.store.Clear(ctx); err != nil {
			return domain.Anonymous, fmt.Errorf("clear expired token: %w", err)
		}
		m.cache.Invalidate(query.AuthUser())
		return domain.Anonymous, nil
	}
	return identity, nil
}

func (m *Manager) derive(ctx context.Context) (domain.Identity, error) {
	token, ok, err := m.store.Get(ctx)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return domain.Anonymous, nil
	}
	identity, err := domain.IdentityAt(token, m.now())
	if err != nil {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			return domain.Anonymous, fmt.Errorf("clear rejected token: %w", clearErr)
		}
		return domain.Anonymous, nil
	}
	return identity, nil
}

// Login submits credentials, re-derives the identity from the freshly
// stored token and moves to the home view.
func (m *Manager) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Anonymous, ErrCredentialsRequired
	}
	if _, err := m.api.Login(ctx, username, password); err != nil {
		return domain.Anonymous, err
	}
	m.cache.Invalidate(query.AuthUser())
	identity, err := m.Current(ctx)
	if err != nil {
		return domain.Anonymous, err
	}
	m.nav.Navigate(navigation.HomePath)
	return identity, nil
}

// Logout drops the token and moves to the login view.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	m.cache.Invalidate(query.AuthUser())
	m.nav.Navigate(navigation.LoginPath)
	return nil
}

// Expire forgets the cached identity after the token was revoked elsewhere,
// typically by the gateway on a 401.
func (m *Manager) Expire() {
	m.cache.Invalidate(query.AuthUser())
}

// Guard gates a view: public paths always pass; protected paths need an
// authenticated identity, otherwise the user is sent to the login view.
func (m *Manager) Guard(ctx context.Context, path string) (domain.Identity, error) {
	identity, err := m.Current(ctx)
	if err != nil {
		return domain.Anonymous, err
	}
	for _, public := range PublicPaths {
		if path == public {
			return identity, nil
		}
	}
	if !identity.IsAuthenticated() {
		if m.nav.CurrentPath() != navigation.LoginPath {
			m.nav.Navigate(navigation.LoginPath)
		}
		return domain.Anonymous, ErrNotAuthenticated
	}
	return identity, nil
}

var _ ports.Session = (*Manager)(nil)
