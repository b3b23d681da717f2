package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foliolink/folio_service/internal/api/handlers"
	"github.com/foliolink/folio_service/internal/api/middleware"
	"github.com/foliolink/folio_service/internal/infrastructure/di"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	zapLog := container.Logger.Zap()
	portfolioHandlers := handlers.NewPortfolioHandler(container.PortfolioService, zapLog)
	priceHandlers := handlers.NewPriceHandler(container.PortfolioService, container.MarketData, zapLog)
	healthHandlers := handlers.NewHealthHandler(container.HealthChecker, zapLog)

	// Health and metrics
	router.GET("/health", healthHandlers.Health)
	router.GET("/live", healthHandlers.Live)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/portfolios", portfolioHandlers.Create)
		api.GET("/portfolios/:id", portfolioHandlers.View)
		api.GET("/portfolios/:id/prices", portfolioHandlers.Prices)
		api.PUT("/portfolios/:id/:secret", portfolioHandlers.Update)
		api.DELETE("/portfolios/:id/:secret", portfolioHandlers.Delete)

		api.GET("/edit/:id/:secret", portfolioHandlers.EditLoad)

		api.POST("/prices", priceHandlers.BulkPrices)
		api.GET("/validate-ticker/:ticker", priceHandlers.ValidateTicker)
	}

	return router
}
