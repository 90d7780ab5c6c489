package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tastybyte/orderbot/config"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger logging.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	router.NoRoute(handler.NotFound)

	// Service endpoints
	router.GET("/", handler.Index)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/menu", handler.GetMenu)
		v1.GET("/menu/:category", handler.GetMenuByCategory)

		v1.POST("/order", handler.PlaceOrder)
		v1.POST("/parse", handler.ParseMessage)

		orders := v1.Group("/orders")
		{
			orders.GET("", handler.ListOrders)
			orders.GET("/:id", handler.GetOrder)
			orders.PUT("/:id/status", handler.UpdateOrderStatus)
		}

		v1.GET("/chat/:orderId", handler.GetChatHistory)
	}

	return router
}
