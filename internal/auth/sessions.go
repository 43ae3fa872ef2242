package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ircomercio/portal/internal/models"
	"github.com/ircomercio/portal/internal/security"
	"gorm.io/gorm"
)

// SessionTTL is the fixed session lifetime from issuance.
const SessionTTL = 24 * time.Hour

// Identity is the authenticated user attached to a request after a session
// validates.
type Identity struct {
	UserID   uint64         `json:"userId"`
	Username string         `json:"username"`
	Name     string         `json:"name"`
	Sector   string         `json:"sector"`
	IsAdmin  bool           `json:"isAdmin"`
	Apps     models.AppList `json:"-"`
}

// Sessions manages the session lifecycle against the identity store. It
// enforces one active session per (user, device): a superseding login either
// rewrites the existing active row or deactivates stragglers and inserts.
type Sessions struct {
	identity *gorm.DB
	nowFn    func() time.Time
}

// NewSessions constructs a Sessions component. nowFn defaults to time.Now.
func NewSessions(identity *gorm.DB, nowFn func() time.Time) *Sessions {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Sessions{identity: identity, nowFn: nowFn}
}

// Issue creates a session for the user/device pair and returns it with a
// fresh token and a 24h expiry.
func (s *Sessions) Issue(ctx context.Context, userID uint64, deviceToken, clientAddress string) (*models.Session, error) {
	token, errToken := security.NewSessionToken()
	if errToken != nil {
		return nil, errToken
	}
	now := s.nowFn().UTC()
	expiresAt := now.Add(SessionTTL)

	var existing models.Session
	errFind := s.identity.WithContext(ctx).
		Where("user_id = ? AND device_token = ? AND is_active = ?", userID, deviceToken, true).
		First(&existing).Error
	switch {
	case errFind == nil:
		updates := map[string]any{
			"session_token": token,
			"ip_address":    clientAddress,
			"expires_at":    expiresAt,
			"last_activity": now,
		}
		if errUpdate := s.identity.WithContext(ctx).Model(&models.Session{}).
			Where("id = ?", existing.ID).Updates(updates).Error; errUpdate != nil {
			return nil, errUpdate
		}
		existing.SessionToken = token
		existing.IPAddress = clientAddress
		existing.ExpiresAt = expiresAt
		existing.LastActivity = now
		return &existing, nil
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		// Any other active session on this device is superseded.
		if errDeactivate := s.identity.WithContext(ctx).Model(&models.Session{}).
			Where("device_token = ? AND is_active = ?", deviceToken, true).
			Update("is_active", false).Error; errDeactivate != nil {
			return nil, errDeactivate
		}
		session := models.Session{
			SessionToken: token,
			UserID:       userID,
			DeviceToken:  deviceToken,
			IPAddress:    clientAddress,
			ExpiresAt:    expiresAt,
			LastActivity: now,
			IsActive:     true,
			CreatedAt:    now,
		}
		if errCreate := s.identity.WithContext(ctx).Create(&session).Error; errCreate != nil {
			return nil, errCreate
		}
		return &session, nil
	default:
		return nil, errFind
	}
}

// Validate checks a token against the store. On success it refreshes the
// session's last-activity timestamp and address and returns the linked
// identity. Expiry is lazy and sticky: an expired row is deactivated on the
// spot and stays that way.
func (s *Sessions) Validate(ctx context.Context, token, clientAddress string) (*Identity, *Denial) {
	var session models.Session
	errFind := s.identity.WithContext(ctx).Preload("User").
		Where("session_token = ? AND is_active = ?", token, true).
		First(&session).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, denialFor(ReasonSessionNotFound)
		}
		return nil, denialFor(ReasonServerError)
	}

	// Account state is checked live, not cached from issuance.
	if session.User == nil || !session.User.IsActive {
		s.deactivate(ctx, token)
		return nil, denialFor(ReasonUserInactive)
	}

	now := s.nowFn().UTC()
	if !now.Before(session.ExpiresAt) {
		s.deactivate(ctx, token)
		return nil, denialFor(ReasonSessionExpired)
	}

	if errTouch := s.identity.WithContext(ctx).Model(&models.Session{}).
		Where("session_token = ?", token).
		Updates(map[string]any{"last_activity": now, "ip_address": clientAddress}).Error; errTouch != nil {
		return nil, denialFor(ReasonServerError)
	}

	return &Identity{
		UserID:   session.User.ID,
		Username: session.User.Username,
		Name:     session.User.Name,
		Sector:   session.User.Sector,
		IsAdmin:  session.User.IsAdmin,
		Apps:     session.User.Apps,
	}, nil
}

// Revoke deactivates the session and records the logout instant. Revoking an
// unknown or already-revoked token is a no-op.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	now := s.nowFn().UTC()
	return s.identity.WithContext(ctx).Model(&models.Session{}).
		Where("session_token = ?", token).
		Updates(map[string]any{"is_active": false, "logout_at": now}).Error
}

func (s *Sessions) deactivate(ctx context.Context, token string) {
	_ = s.identity.WithContext(ctx).Model(&models.Session{}).
		Where("session_token = ?", token).
		Update("is_active", false).Error
}
