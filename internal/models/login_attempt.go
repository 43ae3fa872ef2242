package models

import (
	"time"

	"gorm.io/datatypes"
)

// LoginAttempt is an append-only audit row for every login outcome.
type LoginAttempt struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username    string `gorm:"type:text;index"` // Submitted username (sanitized).
	IPAddress   string `gorm:"type:text;index"` // Client address.
	DeviceToken string `gorm:"type:text"`       // Submitted device token.

	Success       bool   `gorm:"not null"`  // Whether the login succeeded.
	FailureReason string `gorm:"type:text"` // Full server-side reason, empty on success.

	Context datatypes.JSON `gorm:"type:jsonb"` // Request context (user agent, etc.).

	Timestamp time.Time `gorm:"not null;index"` // When the attempt happened.
}

// TableName keeps the original portal table name.
func (LoginAttempt) TableName() string { return "login_attempts" }
