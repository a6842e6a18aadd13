package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/api/handlers"
	"github.com/hyperfolio/wallet-tracker/internal/api/websocket"
	"github.com/hyperfolio/wallet-tracker/internal/temporal"
)

// SetupRouter sets up the API router
func SetupRouter(
	walletsHandler *handlers.WalletsHandler,
	walletDataHandler *handlers.WalletDataHandler,
	userWalletHandler *handlers.UserWalletHandler,
	wsHandler *websocket.Handler,
	logger *zap.Logger,
	corsAllowOrigin string,
	clock temporal.Clock,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger, clock))

	// CORS configuration
	config := cors.Config{
		AllowOrigins:     []string{corsAllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(config))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "wallet-tracker-api",
			"clients": wsHandler.ClientCount(),
		})
	})

	// WebSocket endpoint
	router.GET("/ws", wsHandler.HandleConnection)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Tracked wallet management
		wallets := v1.Group("/wallets")
		{
			wallets.GET("", walletsHandler.ListWallets)
			wallets.POST("", walletsHandler.CreateWallet)
			wallets.GET("/:id", walletsHandler.GetWallet)
			wallets.PUT("/:id", walletsHandler.UpdateWallet)
			wallets.DELETE("/:id", walletsHandler.DeleteWallet)

			// Live upstream data per wallet
			wallets.GET("/:id/summary", walletDataHandler.GetSummary)
			wallets.GET("/:id/equity-history", walletDataHandler.GetEquityHistory)
			wallets.GET("/:id/stats", walletDataHandler.GetStats)
			wallets.GET("/:id/fills", walletDataHandler.GetFills)
		}

		// User wallet connection and copy-trading settings
		userWallet := v1.Group("/user-wallet")
		{
			userWallet.GET("", userWalletHandler.GetSettings)
			userWallet.PUT("/connect", userWalletHandler.ConnectWallet)
			userWallet.PUT("/copy-trading", userWalletHandler.UpdateCopyTrading)
		}
	}

	return router
}

// LoggerMiddleware creates a Gin middleware for logging
func LoggerMiddleware(logger *zap.Logger, clock temporal.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := clock.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := clock.Now().Sub(start)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				logger.Error("request error", zap.String("error", e))
			}
		} else {
			logger.Info("request",
				zap.Int("status", c.Writer.Status()),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("query", query),
				zap.String("ip", c.ClientIP()),
				zap.Duration("latency", latency),
			)
		}
	}
}
