package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("access token is malformed")
	ErrMissingExpiry  = errors.New("access token has no expiry")
	ErrTokenExpired   = errors.New("access token has expired")
)

// Role is the authorization role embedded in the access token.
type Role string

const (
	RoleNone     Role = ""
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operador"
)

// Identity is the user derived from a stored access token. The zero value is
// the anonymous identity.
type Identity struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// Anonymous is the identity of a client without a usable token.
var Anonymous = Identity{}

func (i Identity) IsAuthenticated() bool { return i.Subject != "" && !i.ExpiresAt.IsZero() }
func (i Identity) IsAdmin() bool { return i.IsAuthenticated() && i.Role == RoleAdmin }
func (i Identity) IsOperator() bool { return i.IsAuthenticated() && i.Role == RoleOperator }

// ExpiredAt reports whether the identity is past its expiry instant at now.
func (i Identity) ExpiredAt(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

func (i Identity) String() string {
	if !i.IsAuthenticated() {
		return "anonymous"
	}
	if i.Role == RoleNone {
		return i.Subject
	}
	return fmt.Sprintf("%s (%s)", i.Subject, i.Role)
}

// Claims mirrors the payload issued by POST /token.
type Claims struct {
	Role *string `json:"rol"`
	jwt.RegisteredClaims
}

// TokenGrant is the body of a successful login.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DecodeToken reads the claims of token without verifying its signature;
// the server remains the only authority on validity. Expiry is not checked
// here, only required.
func DecodeToken(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Anonymous, ErrMalformedToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Anonymous, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return Anonymous, ErrMissingExpiry
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Anonymous, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	identity := Identity{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}
	if claims.Role != nil {
		identity.Role = Role(*claims.Role)
	}
	return identity, nil
}

// IdentityAt decodes token and rejects it when it is expired at now.
func IdentityAt(token string, now time.Time) (Identity, error) {
	identity, err := DecodeToken(token)
	if err != nil {
		return Anonymous, err
	}
	if identity.ExpiredAt(now) {
		return Anonymous, ErrTokenExpired
	}
	return identity, nil
}
