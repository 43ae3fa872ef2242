package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/db"
	"gorm.io/gorm"
)

// HealthHandler reports liveness of the server and both stores.
type HealthHandler struct {
	identity      *gorm.DB
	business      *gorm.DB
	ipsConfigured bool
	environment   string
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(identity, business *gorm.DB, ipsConfigured bool, environment string) *HealthHandler {
	return &HealthHandler{
		identity:      identity,
		business:      business,
		ipsConfigured: ipsConfigured,
		environment:   environment,
	}
}

// Health pings both stores and reports overall status.
func (h *HealthHandler) Health(c *gin.Context) {
	identityOK := db.Ping(h.identity) == nil
	businessOK := db.Ping(h.business) == nil

	status := "healthy"
	database := "connected"
	if !identityOK || !businessOK {
		status = "unhealthy"
		database = "disconnected"
	}

	ips := "not configured"
	if h.ipsConfigured {
		ips = "configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"database":      database,
		"identityStore": storeState(identityOK),
		"businessStore": storeState(businessOK),
		"authorizedIPs": ips,
		"environment":   h.environment,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func storeState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}
