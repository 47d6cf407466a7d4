package api

import (
	"github.com/cropwise/advisor/internal/api/advisory"
	"github.com/cropwise/advisor/internal/api/chat"
	"github.com/cropwise/advisor/internal/api/middleware"
	"github.com/cropwise/advisor/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	advisoryService *service.AdvisoryService,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Advisory API (identity set by the upstream auth layer)
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Identity())

	chatHandler := chat.NewHandler(chatService)
	chatHandler.RegisterRoutes(apiGroup)

	advisoryHandler := advisory.NewHandler(advisoryService)
	advisoryHandler.RegisterRoutes(apiGroup)

	return r
}
