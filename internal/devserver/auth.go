package devserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
)

const userKey = "devserver.user"

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue mints a token for user carrying sub, rol and exp.
func (i *Issuer) Issue(user authdomain.User) (string, error) {
	now := i.now()
	claims := authdomain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if user.Role != nil {
		role := user.Role.Name
		claims.Role = &role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature and expiry and returns the subject.
func (i *Issuer) Verify(token string) (string, error) {
	var claims authdomain.Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// authenticate resolves the bearer token to a user, answering 401 otherwise.
func authenticate(store *Store, issuer *Issuer, responder *apperrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			responder.Respond(c, apperrors.ProblemUnauthorized.WithDetail("Not authenticated"))
			return
		}
		subject, err := issuer.Verify(strings.TrimSpace(token))
		if err != nil {
			responder.Respond(c, apperrors.ProblemUnauthorized.WithDetail("No se pudieron validar las credenciales"))
			return
		}
		user, ok := store.User(subject)
		if !ok {
			responder.Respond(c, apperrors.ProblemUnauthorized.WithDetail("No se pudieron validar las credenciales"))
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// requireRole answers 403 unless the user holds one of roles.
func requireRole(responder *apperrors.Responder, detail string, roles ...authdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := currentUser(c).RoleName()
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		responder.Respond(c, apperrors.ProblemForbidden.WithDetail(detail))
	}
}

func currentUser(c *gin.Context) authdomain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(authdomain.User); ok {
			return user
		}
	}
	return authdomain.User{}
}
