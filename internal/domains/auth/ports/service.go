package ports

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
)

// Authenticator exchanges credentials for a token. Implementations write the
// granted token to the TokenStore before returning.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.TokenGrant, error)
}

// Session exposes the current identity and the login/logout transitions.
type Session interface {
	Current(ctx context.Context) (domain.Identity, error)
	Login(ctx context.Context, username, password string) (domain.Identity, error)
	Logout(ctx context.Context) error
}

// Directory serves the profile of the authenticated user.
type Directory interface {
	CurrentUser(ctx context.Context) (domain.User, error)
}
