package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	"github.com/ircomercio/portal/internal/http/api/handlers"
	log "github.com/sirupsen/logrus"
)

// identityKey is the gin context key the gate stores the identity under.
const identityKey = "identity"

// bypassRule matches one public path: exact, or every path under a prefix.
type bypassRule struct {
	path   string
	prefix bool
}

// bypassRules is the ordered allowlist of paths that skip authentication:
// the portal landing page, health check, the auth endpoints themselves, the
// policy introspection endpoints, and every mini-app's static tree.
var bypassRules = []bypassRule{
	{path: "/"},
	{path: "/health"},
	{path: "/api/login"},
	{path: "/api/logout"},
	{path: "/api/verify-session"},
	{path: "/api/ip"},
	{path: "/api/check-ip-access"},
	{path: "/api/business-hours"},
	{path: "/portal/", prefix: true},
	{path: "/precos/", prefix: true},
	{path: "/cotacoes/", prefix: true},
	{path: "/ordem-compra/", prefix: true},
}

// bypassesAuth reports whether the path is public.
func bypassesAuth(requestPath string) bool {
	for _, rule := range bypassRules {
		if rule.prefix {
			if strings.HasPrefix(requestPath, rule.path) {
				return true
			}
			continue
		}
		if requestPath == rule.path {
			return true
		}
	}
	return false
}

// AccessGate is the middleware guarding every non-public route. It extracts
// the session token from the X-Session-Token header or the sessionToken query
// parameter, validates it, and attaches the identity to the request context.
func AccessGate(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bypassesAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		token := strings.TrimSpace(c.GetHeader("X-Session-Token"))
		if token == "" {
			token = strings.TrimSpace(c.Query("sessionToken"))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":           "Não autenticado",
				"redirectToLogin": true,
			})
			return
		}

		identity, denial := sessions.Validate(c.Request.Context(), token, handlers.ClientIP(c))
		if denial != nil {
			if denial.Reason == auth.ReasonServerError {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro ao verificar autenticação"})
				return
			}
			log.WithFields(log.Fields{"reason": denial.Reason, "path": c.Request.URL.Path}).Info("gate: denied")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":           denial.Error,
				"redirectToLogin": true,
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity the gate attached, if any.
func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok
}

// RequireApp gates a mini-app's API on the user's app allowlist. Admins pass
// unconditionally.
func RequireApp(app string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":           "Não autenticado",
				"redirectToLogin": true,
			})
			return
		}
		if identity.IsAdmin || identity.Apps.Contains(app) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Acesso negado",
			"message": "Seu usuário não tem acesso a este módulo.",
		})
	}
}
