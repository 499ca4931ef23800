package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

var ErrEmptyToken = errors.New("login answered without an access token")

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (authdomain.TokenGrant, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := request{
		op:          "Login",
		method:      http.MethodPost,
		path:        "/token",
		body:        strings.NewReader(form.Encode()),
		contentType: contentTypeForm,
	}
	var grant authdomain.TokenGrant
	if err := c.do(ctx, req, &grant); err != nil {
		return authdomain.TokenGrant{}, err
	}
	if strings.TrimSpace(grant.AccessToken) == "" {
		return authdomain.TokenGrant{}, ErrEmptyToken
	}
	if err := c.tokens.Set(ctx, grant.AccessToken); err != nil {
		return authdomain.TokenGrant{}, fmt.Errorf("store access token: %w", err)
	}
	return grant, nil
}

// Logout forgets the stored token. The API keeps no session to end.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context) (authdomain.User, error) {
	return get[authdomain.User](ctx, c, "CurrentUser", "/users/me", nil)
}

var (
	_ authports.Authenticator = (*Client)(nil)
	_ authports.Directory     = (*Client)(nil)
)
