package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/ircomercio/portal/internal/db"
	"github.com/ircomercio/portal/internal/hours"
	"github.com/ircomercio/portal/internal/models"
	"github.com/ircomercio/portal/internal/ratelimit"
	"github.com/ircomercio/portal/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

// maxDeviceFieldLen caps device name and user agent columns.
const maxDeviceFieldLen = 95

// LoginInput carries everything a login attempt submits.
type LoginInput struct {
	Username      string
	Password      string
	DeviceToken   string
	ClientAddress string
	UserAgent     string
}

// SessionInfo is returned to the client after a successful login.
type SessionInfo struct {
	UserID       uint64    `json:"userId"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	IsAdmin      bool      `json:"isAdmin"`
	SessionToken string    `json:"sessionToken"`
	DeviceToken  string    `json:"deviceToken"`
	IP           string    `json:"ip"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Service runs the login policy chain: field presence, rate limit, input
// syntax, IP allowlist, user lookup, account state, business hours,
// credentials. Every denial from the rate limit onward is audited.
type Service struct {
	identity  *gorm.DB
	limiter   *ratelimit.Manager
	hours     *hours.Checker
	allowlist IPAllowlist
	sessions  *Sessions
	nowFn     func() time.Time
}

// NewService constructs the login service. nowFn defaults to time.Now.
func NewService(identity *gorm.DB, limiter *ratelimit.Manager, checker *hours.Checker, allowlist IPAllowlist, sessions *Sessions, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		identity:  identity,
		limiter:   limiter,
		hours:     checker,
		allowlist: allowlist,
		sessions:  sessions,
		nowFn:     nowFn,
	}
}

// Sessions exposes the session lifecycle component the service issues through.
func (s *Service) Sessions() *Sessions { return s.sessions }

// Login runs the policy chain and either issues a session or explains the
// denial. The Denial's Error/Message is safe to show the client; the Reason
// and Audit fields are not.
func (s *Service) Login(ctx context.Context, in LoginInput) (*SessionInfo, *Denial) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" || strings.TrimSpace(in.DeviceToken) == "" {
		return nil, denialFor(ReasonMissingFields)
	}

	if result := s.limiter.Allow(ctx, in.ClientAddress); !result.Allowed {
		log.WithFields(log.Fields{"ip": in.ClientAddress, "reset": result.Reset}).Warn("login: rate limit exceeded")
		return nil, s.deny(ctx, in, ReasonRateLimited)
	}

	username := sanitize(in.Username)
	deviceToken := sanitize(in.DeviceToken)

	if !usernamePattern.MatchString(username) {
		return nil, s.deny(ctx, in, ReasonInvalidUsername)
	}
	if len(in.Password) < 1 || len(in.Password) > 100 {
		return nil, s.deny(ctx, in, ReasonInvalidPassword)
	}

	// IP policy runs before user lookup so it gates even valid credentials.
	if !s.allowlist.Contains(in.ClientAddress) {
		log.WithField("ip", in.ClientAddress).Warn("login: unauthorized address")
		return nil, s.deny(ctx, in, ReasonIPNotAuthorized)
	}

	var user models.User
	errFind := s.identity.WithContext(ctx).
		Where(db.CaseInsensitiveEqualExpr(s.identity, "username"), db.NormalizeMatchValue(s.identity, strings.ToLower(username))).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, s.deny(ctx, in, ReasonUserNotFound)
		}
		log.WithError(errFind).Error("login: user lookup failed")
		return nil, denialFor(ReasonServerError)
	}

	if !user.IsActive {
		return nil, s.deny(ctx, in, ReasonUserInactive)
	}

	if !user.IsAdmin && !s.hours.InBusinessHours() {
		return nil, s.deny(ctx, in, ReasonOutsideBusinessHours)
	}

	if !security.VerifyPassword(user.Password, in.Password) {
		return nil, s.deny(ctx, in, ReasonBadCredentials)
	}

	s.upsertDevice(ctx, user.ID, deviceToken, in)

	session, errIssue := s.sessions.Issue(ctx, user.ID, deviceToken, in.ClientAddress)
	if errIssue != nil {
		log.WithError(errIssue).Error("login: issue session failed")
		return nil, denialFor(ReasonServerError)
	}

	s.logAttempt(ctx, in, true, "")
	log.WithFields(log.Fields{"username": user.Username, "ip": in.ClientAddress}).Info("login: success")

	return &SessionInfo{
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Sector:       user.Sector,
		IsAdmin:      user.IsAdmin,
		SessionToken: session.SessionToken,
		DeviceToken:  deviceToken,
		IP:           in.ClientAddress,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// deny audits the rejection and returns its Denial.
func (s *Service) deny(ctx context.Context, in LoginInput, reason Reason) *Denial {
	denial := denialFor(reason)
	if denial.Audit != "" {
		s.logAttempt(ctx, in, false, denial.Audit)
	}
	return denial
}

// upsertDevice records the device for bookkeeping. Failures are logged but do
// not block the login.
func (s *Service) upsertDevice(ctx context.Context, userID uint64, deviceToken string, in LoginInput) {
	now := s.nowFn().UTC()
	agent := truncate(sanitize(in.UserAgent), maxDeviceFieldLen)
	if agent == "" {
		agent = "Unknown"
	}
	device := models.Device{
		DeviceToken:       deviceToken,
		DeviceFingerprint: security.DeviceFingerprint(deviceToken, in.ClientAddress),
		UserID:            userID,
		DeviceName:        agent,
		IPAddress:         in.ClientAddress,
		UserAgent:         agent,
		IsActive:          true,
		LastAccess:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	errUpsert := s.identity.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"device_fingerprint", "user_id", "device_name", "ip_address",
			"user_agent", "is_active", "last_access", "updated_at",
		}),
	}).Create(&device).Error
	if errUpsert != nil {
		log.WithError(errUpsert).Warn("login: device upsert failed")
	}
}

// sanitize trims the value and strips angle brackets, as the original portal
// did on every client-supplied string.
func sanitize(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.NewReplacer("<", "", ">", "").Replace(trimmed)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
