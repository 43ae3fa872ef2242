package models

import "time"

// Device records a device that completed a login, keyed by its client token.
// Bookkeeping only; the login flow upserts but never rejects on it.
type Device struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	DeviceToken       string `gorm:"type:text;not null;uniqueIndex"` // Client-supplied identifier.
	DeviceFingerprint string `gorm:"type:text;not null"`             // sha256(device token + client address).

	UserID uint64 `gorm:"not null;index"` // Last user seen on this device.

	DeviceName string `gorm:"type:text"` // Truncated user agent.
	IPAddress  string `gorm:"type:text"` // Last login address.
	UserAgent  string `gorm:"type:text"` // Truncated user agent header.

	IsActive   bool      `gorm:"not null;default:true"` // Soft-disable flag.
	LastAccess time.Time `gorm:"not null"`              // Last successful login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // First seen.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update.
}

// TableName keeps the original portal table name.
func (Device) TableName() string { return "authorized_devices" }
