package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del núcleo.
func NewRouter(
	logger *zap.Logger,
	orchestratorH *OrchestratorHandler,
	sessionH *SessionHandler,
	retrievalH *RetrievalHandler,
	limiter service.RequestRateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())
	if limiter != nil {
		r.Use(rateLimitMiddleware(limiter))
	}

	r.POST("/aggregate", orchestratorH.Aggregate)
	r.POST("/route", orchestratorH.Route)
	r.GET("/health", orchestratorH.Health)
	r.GET("/capabilities", orchestratorH.Capabilities)

	sessions := r.Group("/sessions")
	sessions.POST("", sessionH.Start)
	sessions.POST("/cleanup", sessionH.Cleanup)
	sessions.POST("/:id/messages", sessionH.SaveMessages)
	sessions.GET("/:id/history", sessionH.History)
	sessions.GET("/:id", sessionH.Info)
	sessions.POST("/:id/end", sessionH.End)

	retrieval := r.Group("/retrieval")
	retrieval.POST("/decide", retrievalH.Decide)
	retrieval.POST("/search", retrievalH.Search)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware rechaza requests que exceden la ventana por cliente.
func rateLimitMiddleware(limiter service.RequestRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
