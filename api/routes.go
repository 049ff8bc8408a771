package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/warmup/api/middleware"
	"github.com/customeros/warmup/api/rest"
	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/services/facade"
)

// RegisterRoutes wires the Control API's `/warmup/*` surface onto r.
func RegisterRoutes(r *gin.Engine, f *facade.Facade, sessionRepo interfaces.SessionRepository, mailLogRepo interfaces.MailLogRepository, cfg *config.Config) {
	if f == nil {
		panic("facade cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", rest.HealthCheck)

	h := rest.NewHandlers(f, sessionRepo, mailLogRepo)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-WARMUP-API-KEY",
		ValidAPIKey: cfg.AppConfig.APIKey,
	})

	warmup := r.Group("/warmup")
	warmup.Use(apiKeyMiddleware)
	{
		warmup.POST("/start", h.Start())
		warmup.POST("/pause", h.Pause())
		warmup.POST("/resume", h.Resume())
		warmup.POST("/stop", h.Stop())
		warmup.GET("/status/:id", h.Status())
		warmup.GET("/sessions", h.ListSessions())
		warmup.GET("/sessions/:id/logs", h.SessionLogs())
		warmup.GET("/logs", h.RecentLogs())
	}
}
