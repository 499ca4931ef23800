package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the client-side tables.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&tokenRecord{})
}

// Token schema mirrors the postgres token store: one bearer credential per profile.
type tokenRecord struct {
	Profile   string    `gorm:"primaryKey;column:profile;size:128"`
	Name      string    `gorm:"column:name;size:64;not null"`
	Token     string     `gorm:"column:token;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (tokenRecord) TableName() string { return "client_tokens" }
