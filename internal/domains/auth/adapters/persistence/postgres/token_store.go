package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

// DefaultProfile is used when no profile name is configured.
const DefaultProfile = "default"

// TokenStore keeps one token per profile in PostgreSQL, letting several
// terminals of a dispatch desk share a login. Caller owns DB lifecycle.
type TokenStore struct {
	db      *gorm.DB
	profile string
}

func NewTokenStore(db *gorm.DB, profile string) *TokenStore {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return &TokenStore{db: db, profile: profile}
}

type tokenRecord struct {
	Profile   string    `gorm:"primaryKey;column:profile;size:128"`
	Name      string    `gorm:"column:name;size:64;not null"`
	Token     string     `gorm:"column:token;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (tokenRecord) TableName() string { return "client_tokens" }

// Set upserts the token for the profile.
func (s *TokenStore) Set(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	rec := tokenRecord{Profile: s.profile, Name: authports.TokenKey, Token: token}
	if identity, err := authdomain.DecodeToken(token); err == nil {
		rec.ExpiresAt = &identity.ExpiresAt
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "token", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *TokenStore) Get(ctx context.Context) (string, bool, error) {
	if err := s.ensureDB(); err != nil {
		return "", false, err
	}
	var rec tokenRecord
	err := s.db.WithContext(ctx).Where("profile = ?", s.profile).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Token, rec.Token != "", nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&tokenRecord{}, "profile = ?", s.profile).Error
}

// PurgeExpired removes the tokens of every profile whose exp claim is
// before now and reports how many rows went away.
func (s *TokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&tokenRecord{})
	return res.RowsAffected, res.Error
}

func (s *TokenStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres token store not configured")
	}
	return nil
}

var _ authports.TokenStore = (*TokenStore)(nil)
