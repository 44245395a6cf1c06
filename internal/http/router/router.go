// Package router assembles the gin engine from the registered modules.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "naql_backend/internal/http"
	"naql_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// New builds the engine: global middleware, health, metrics and every module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(httpkit.RequestLogger(app.Logger, app.Metrics))
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", healthHandler(app.Health))
	if app.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	v1 := engine.Group("/api/v1")

	diagnostics := v1.Group("/diagnostics")
	diagnostics.Use(httpkit.NewDiagnosticsRateLimiter(app.Logger).RateLimit())
	if app.Config.IsAdminAuthEnabled() {
		diagnostics.Use(httpkit.AuthRequired(app.Config), httpkit.RequireRole("admin"))
	} else {
		app.Logger.Warn("ADMIN_JWT_SECRET not set; diagnostics endpoints are unauthenticated")
	}

	rc := &apphttp.RouterContext{
		Engine:      engine,
		V1:          v1,
		Diagnostics: diagnostics,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("module registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

func healthHandler(health apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
