package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/auth"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

// RouterConfig collects what the HTTP layer is built from.
type RouterConfig struct {
	APIKeys     []string
	CORSOrigins []string
	Templates   *TemplateHandler
	Pool        PoolStats
	Log         zerolog.Logger
}

// NewRouter builds the gin engine with every route. Health and the stylesheet embed are
// public; everything else needs an API key when keys are configured.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(cfg.Log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	persistence := cfg.Templates != nil && cfg.Templates.Store != nil

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck(cfg.Pool, persistence))
		if persistence {
			api.GET("/templates/:id/css", cfg.Templates.GetStylesheet)
		}
	}

	private := api.Group("", auth.RequireAPIKey(cfg.APIKeys))
	{
		private.POST("/templates/generate", cfg.Templates.Generate)
		if persistence {
			private.GET("/templates/:id", cfg.Templates.GetTemplate)
			private.GET("/companies/:name/templates", cfg.Templates.ListCompanyTemplates)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", auth.HeaderAPIKey}
	config.MaxAge = 12 * time.Hour
	return config
}

func accessLog(log zerolog.Logger) gin.HandlerFunc {
	log = logger.Component(log, "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
