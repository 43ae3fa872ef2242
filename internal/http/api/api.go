package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	"github.com/ircomercio/portal/internal/hours"
	"github.com/ircomercio/portal/internal/http/api/handlers"
	"gorm.io/gorm"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Identity    *gorm.DB
	Business    *gorm.DB
	Service     *auth.Service
	Hours       *hours.Checker
	Allowlist   auth.IPAllowlist
	StaticDir   string
	Environment string
}

// RegisterRoutes wires the middleware chain, the public endpoints, the static
// trees, and the per-app CRUD routes onto the engine.
func RegisterRoutes(engine *gin.Engine, deps Deps) {
	if engine == nil {
		return
	}

	engine.Use(corsMiddleware())
	engine.Use(AccessGate(deps.Service.Sessions()))

	registerStatic(engine, deps.StaticDir)

	healthHandler := handlers.NewHealthHandler(deps.Identity, deps.Business, len(deps.Allowlist) > 0, deps.Environment)
	engine.GET("/health", healthHandler.Health)

	metaHandler := handlers.NewMetaHandler(deps.Hours, deps.Allowlist)
	engine.GET("/api/ip", metaHandler.GetIP)
	engine.GET("/api/check-ip-access", metaHandler.CheckIPAccess)
	engine.GET("/api/business-hours", metaHandler.BusinessHours)

	authHandler := handlers.NewAuthHandler(deps.Service)
	engine.POST("/api/login", authHandler.Login)
	engine.POST("/api/logout", authHandler.Logout)
	engine.POST("/api/verify-session", authHandler.VerifySession)

	precoHandler := handlers.NewPrecoHandler(deps.Business)
	precos := engine.Group("/api/precos", RequireApp("precos"))
	precos.HEAD("", precoHandler.Head)
	precos.GET("", precoHandler.List)
	precos.GET("/:id", precoHandler.Get)
	precos.POST("", precoHandler.Create)
	precos.PUT("/:id", precoHandler.Update)
	precos.DELETE("/:id", precoHandler.Delete)

	cotacaoHandler := handlers.NewCotacaoHandler(deps.Business)
	cotacoes := engine.Group("/api/cotacoes", RequireApp("cotacoes"))
	cotacoes.HEAD("", cotacaoHandler.Head)
	cotacoes.GET("", cotacaoHandler.List)
	cotacoes.GET("/:id", cotacaoHandler.Get)
	cotacoes.POST("", cotacaoHandler.Create)
	cotacoes.PUT("/:id", cotacaoHandler.Update)
	cotacoes.DELETE("/:id", cotacaoHandler.Delete)

	ordemHandler := handlers.NewOrdemHandler(deps.Business)
	ordens := engine.Group("/api/ordens", RequireApp("ordem-compra"))
	ordens.HEAD("", ordemHandler.Head)
	ordens.GET("", ordemHandler.List)
	ordens.GET("/:id", ordemHandler.Get)
	ordens.POST("", ordemHandler.Create)
	ordens.PUT("/:id", ordemHandler.Update)
	ordens.DELETE("/:id", ordemHandler.Delete)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
	})
}

// registerStatic serves the portal landing page and each mini-app's asset
// tree. A missing static dir leaves the API fully functional.
func registerStatic(engine *gin.Engine, staticDir string) {
	if staticDir == "" {
		return
	}
	portalIndex := filepath.Join(staticDir, "portal", "public", "index.html")
	engine.GET("/", func(c *gin.Context) {
		c.File(portalIndex)
	})
	engine.Static("/portal", filepath.Join(staticDir, "portal", "public"))
	engine.Static("/precos", filepath.Join(staticDir, "precos", "public"))
	engine.Static("/cotacoes", filepath.Join(staticDir, "cotacoes", "public"))
	engine.Static("/ordem-compra", filepath.Join(staticDir, "ordem-compra", "public"))
}

// corsMiddleware enables permissive CORS for the browser mini-apps.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Session-Token")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
