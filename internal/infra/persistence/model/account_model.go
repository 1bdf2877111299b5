package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. IDs are UUIDv7 generated by the application.
// It is an exported type so the schema stays declared in one place for GORM.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Email        string    `gorm:"type:varchar(255);not null"`
	Username     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_username"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
