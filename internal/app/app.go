package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	"github.com/ircomercio/portal/internal/config"
	"github.com/ircomercio/portal/internal/db"
	"github.com/ircomercio/portal/internal/hours"
	"github.com/ircomercio/portal/internal/http/api"
	"github.com/ircomercio/portal/internal/ratelimit"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds graceful drain on termination.
const shutdownTimeout = 5 * time.Second

// RunServer opens both stores, migrates them, builds the access-control
// components, and serves the portal until the context is canceled.
func RunServer(ctx context.Context, cfg config.Config) error {
	identity, errIdentity := db.Open(cfg.IdentityDSN)
	if errIdentity != nil {
		return fmt.Errorf("identity store: %w", errIdentity)
	}
	if errMigrate := db.MigrateIdentity(identity); errMigrate != nil {
		return errMigrate
	}

	business, errBusiness := db.Open(cfg.BusinessDSN)
	if errBusiness != nil {
		return fmt.Errorf("business store: %w", errBusiness)
	}
	if errMigrate := db.MigrateBusiness(business); errMigrate != nil {
		return errMigrate
	}

	checker, errHours := hours.NewChecker(hours.DefaultTimezone, nil)
	if errHours != nil {
		return errHours
	}

	limiter := ratelimit.NewManager(ratelimit.RedisOptions{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
		Prefix:   cfg.RateLimit.RedisPrefix,
	}, nil)
	limiter.StartSweeper(ctx)

	sessions := auth.NewSessions(identity, nil)
	allowlist := auth.IPAllowlist(cfg.AuthorizedIPs)
	service := auth.NewService(identity, limiter, checker, allowlist, sessions, nil)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	api.RegisterRoutes(engine, api.Deps{
		Identity:    identity,
		Business:    business,
		Service:     service,
		Hours:       checker,
		Allowlist:   allowlist,
		StaticDir:   cfg.StaticDir,
		Environment: cfg.Environment,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.WithFields(log.Fields{
		"addr":          addr,
		"environment":   cfg.Environment,
		"authorizedIPs": len(cfg.AuthorizedIPs),
	}).Info("portal server starting")

	if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
		return errListen
	}
	return nil
}
