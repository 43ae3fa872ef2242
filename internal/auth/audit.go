package auth

import (
	"context"
	"encoding/json"

	"github.com/ircomercio/portal/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// logAttempt appends a login attempt to the audit table. Audit failures are
// logged and swallowed; they never fail the login itself.
func (s *Service) logAttempt(ctx context.Context, in LoginInput, success bool, reason string) {
	var auditCtx datatypes.JSON
	if payload, errMarshal := json.Marshal(map[string]string{"userAgent": in.UserAgent}); errMarshal == nil {
		auditCtx = datatypes.JSON(payload)
	}
	attempt := models.LoginAttempt{
		Username:      sanitize(in.Username),
		IPAddress:     in.ClientAddress,
		DeviceToken:   sanitize(in.DeviceToken),
		Success:       success,
		FailureReason: reason,
		Context:       auditCtx,
		Timestamp:     s.nowFn().UTC(),
	}
	if errCreate := s.identity.WithContext(ctx).Create(&attempt).Error; errCreate != nil {
		log.WithError(errCreate).WithFields(log.Fields{
			"username": attempt.Username,
			"ip":       attempt.IPAddress,
		}).Error("audit: write login attempt failed")
	}
}
