package models

import "time"

// Session represents an active bearer session in the identity database.
// At most one active row exists per (user, device); a superseding login
// either rewrites the existing row or deactivates it and inserts anew.
type Session struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SessionToken string `gorm:"type:text;not null;uniqueIndex"` // Opaque bearer token.

	UserID uint64 `gorm:"not null;index"`      // Owning user.
	User   *User  `gorm:"foreignKey:UserID"`   // Owning user record.

	DeviceToken string `gorm:"type:text;not null;index"` // Originating device token.
	IPAddress   string `gorm:"type:text"`                // Last seen client address.

	ExpiresAt    time.Time  `gorm:"not null"`       // Fixed 24h from issuance.
	LastActivity time.Time  `gorm:"not null"`       // Refreshed on every authenticated request.
	LogoutAt     *time.Time // Set on explicit logout.
	IsActive     bool       `gorm:"not null;index"` // False once revoked, superseded, or expired.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issuance timestamp.
}

// TableName keeps the original portal table name.
func (Session) TableName() string { return "active_sessions" }
