package ports

import "context"

// TokenKey is the fixed name the bearer token is persisted under.
const TokenKey = "accessToken"

// TokenStore persists the single bearer credential of this client. It does
// not interpret the token; expiry is the session's concern.
type TokenStore interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (token string, ok bool, err error)
	Clear(ctx context.Context) error
}
