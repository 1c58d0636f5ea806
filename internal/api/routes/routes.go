package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wealth-one/wealth_service/internal/api/handlers"
	"github.com/wealth-one/wealth_service/internal/api/middleware"
	"github.com/wealth-one/wealth_service/internal/infrastructure/di"
	"github.com/wealth-one/wealth_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	if container.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware - order matters
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	authHandler := handlers.NewAuthHandler(container.UserService, container.Logger)
	marketHandler := handlers.NewMarketHandler(container.CoinGecko, container.StockAPI, container.Logger)
	portfolioHandler := handlers.NewPortfolioHandler(
		container.PortfolioService, container.TransactionRepo, container.HoldingRepo, container.Logger,
	)
	chatHandler := handlers.NewChatHandler(container.ChatService, container.Logger)
	healthHandler := handlers.NewHealthHandler(container.DB, container.Redis, container.Logger)

	// Health and observability (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)
	router.GET("/version", healthHandler.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication
	authRoutes := router.Group("/auth/v1")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Market data proxies (auth required; provider keys stay server-side)
	market := router.Group("/api", middleware.Authentication(container.Config))
	{
		market.GET("/crypto/prices", marketHandler.CryptoPrices)
		market.GET("/crypto/trending", marketHandler.TrendingCoins)
		market.GET("/stock/price", marketHandler.StockPrice)
	}

	// Portfolio
	v1 := router.Group("/api/v1", middleware.Authentication(container.Config))
	{
		v1.GET("/users/me", authHandler.GetProfile)

		v1.GET("/portfolio/overview", portfolioHandler.Overview)
		v1.GET("/portfolio/assets", portfolioHandler.Assets)
		v1.POST("/portfolio/refresh-prices", portfolioHandler.RefreshPrices)

		v1.POST("/transactions", portfolioHandler.RecordTransaction)
		v1.POST("/transactions/import", portfolioHandler.ImportTransactions)
		v1.GET("/transactions", portfolioHandler.ListTransactions)

		v1.POST("/holdings/import", portfolioHandler.ImportHoldings)
		v1.GET("/holdings", portfolioHandler.ListHoldings)

		v1.POST("/chat", chatHandler.Ask)
	}

	return router
}
