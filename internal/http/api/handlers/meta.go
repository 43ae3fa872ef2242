package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	"github.com/ircomercio/portal/internal/hours"
)

// MetaHandler serves the public policy introspection endpoints.
type MetaHandler struct {
	hours     *hours.Checker
	allowlist auth.IPAllowlist
}

// NewMetaHandler constructs a MetaHandler.
func NewMetaHandler(checker *hours.Checker, allowlist auth.IPAllowlist) *MetaHandler {
	return &MetaHandler{hours: checker, allowlist: allowlist}
}

// GetIP returns the caller's resolved address.
func (h *MetaHandler) GetIP(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ip": ClientIP(c)})
}

// CheckIPAccess reports whether the caller's address is allowlisted.
func (h *MetaHandler) CheckIPAccess(c *gin.Context) {
	ip := ClientIP(c)
	authorized := h.allowlist.Contains(ip)
	message := "IP não autorizado"
	if authorized {
		message = "IP autorizado"
	}
	c.JSON(http.StatusOK, gin.H{
		"authorized": authorized,
		"ip":         ip,
		"message":    message,
	})
}

// BusinessHours reports the current business-hours evaluation.
func (h *MetaHandler) BusinessHours(c *gin.Context) {
	c.JSON(http.StatusOK, h.hours.Snapshot())
}
