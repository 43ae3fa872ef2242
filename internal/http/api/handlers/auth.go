package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	log "github.com/sirupsen/logrus"
)

// AuthHandler serves login, logout, and session verification.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

// Login runs the credential and policy chain and returns a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campos obrigatórios ausentes"})
		return
	}

	info, denial := h.service.Login(c.Request.Context(), auth.LoginInput{
		Username:      body.Username,
		Password:      body.Password,
		DeviceToken:   body.DeviceToken,
		ClientAddress: ClientIP(c),
		UserAgent:     c.GetHeader("User-Agent"),
	})
	if denial != nil {
		payload := gin.H{"error": denial.Error}
		if denial.Message != "" {
			payload["message"] = denial.Message
		}
		c.JSON(denial.Status, payload)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": info})
}

// tokenRequest defines the request body for logout and verification.
type tokenRequest struct {
	SessionToken string `json:"sessionToken"`
}

// Logout revokes the session; revoking an unknown token still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	var body tokenRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.SessionToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session token ausente"})
		return
	}
	if errRevoke := h.service.Sessions().Revoke(c.Request.Context(), strings.TrimSpace(body.SessionToken)); errRevoke != nil {
		log.WithError(errRevoke).Error("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao fazer logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifySession validates a token and returns the linked identity.
func (h *AuthHandler) VerifySession(c *gin.Context) {
	var body tokenRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.SessionToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "reason": string(auth.ReasonTokenMissing)})
		return
	}

	identity, denial := h.service.Sessions().Validate(c.Request.Context(), strings.TrimSpace(body.SessionToken), ClientIP(c))
	if denial != nil {
		status := http.StatusUnauthorized
		if denial.Reason == auth.ReasonServerError {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"valid": false, "reason": string(denial.Reason)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "session": identity})
}
