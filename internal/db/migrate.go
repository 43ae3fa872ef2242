package db

import (
	"fmt"

	"github.com/ircomercio/portal/internal/models"
	"gorm.io/gorm"
)

// MigrateIdentity runs migrations for the identity store (users, sessions,
// devices, login attempts).
func MigrateIdentity(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil identity connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Device{},
		&models.LoginAttempt{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate identity: %w", errAutoMigrate)
	}
	if errIdx := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_active_sessions_user_device
		ON active_sessions (user_id, device_token, is_active)
	`).Error; errIdx != nil {
		return fmt.Errorf("db: create session device index: %w", errIdx)
	}
	return nil
}

// MigrateBusiness runs migrations for the business store (precos, cotacoes,
// ordens).
func MigrateBusiness(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil business connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.Preco{},
		&models.Cotacao{},
		&models.Ordem{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate business: %w", errAutoMigrate)
	}
	return nil
}
