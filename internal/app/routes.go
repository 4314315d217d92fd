package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gomonday/annonsanalys-core/internal/middleware"
	"github.com/gomonday/annonsanalys-core/internal/modules/ai"
	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
	"github.com/gomonday/annonsanalys-core/internal/modules/analytics"
	"github.com/gomonday/annonsanalys-core/internal/modules/health"
	"github.com/gomonday/annonsanalys-core/internal/modules/preference"
	pkgredis "github.com/gomonday/annonsanalys-core/internal/pkg/redis"
	"github.com/gomonday/annonsanalys-core/internal/pkg/response"
)

const apiPrefix = "/api/v2"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "annonsanalys-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/gomonday/annonsanalys-core",
	}

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.RateLimit(rc.Raw()))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	health.RegisterRoutes(api, db, rc.Raw())

	// Comparison pipeline
	invoker := ai.NewClient(a.cfg.AI, a.cfg.AI.CompareModel)
	analysisSvc := analysis.NewService(db, invoker, analytics.ExtractTokens, rc.Raw(), a.logger)
	analysis.NewHandler(analysisSvc).RegisterRoutes(api)

	// Preference quiz
	preferenceSvc := preference.NewService(db, a.logger)
	preference.NewHandler(preferenceSvc).RegisterRoutes(api)

	// Admin dashboard, cached per URL
	dashboard := api.Group("", middleware.RequireAdmin())
	dashboard.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:     30 * time.Second,
		Disable: a.cfg.IsDev(),
	}))
	analyticsSvc := analytics.NewService(db, a.logger)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(dashboard)

	api.GET("/clean_cache", middleware.RequireAdmin(), func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"deleted": deleted})
	})
}

func humanizeDuration(d time.Duration) string {
	d = d.Round(time.Second)
	day := d / (24 * time.Hour)
	d -= day * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	switch {
	case day > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", day, h, m, s)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
