package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/buxdao/nft-ownership-sync/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// NFT and collection endpoints (public read access)
		v1.GET("/nfts/:mint", handler.GetNFT)
		v1.GET("/collections/:symbol/stats", handler.GetCollectionStats)
		v1.GET("/collections/:symbol/runs/last", handler.GetLastRun)

		// Outbox endpoints (requires authentication)
		outbox := v1.Group("/outbox", middleware.Auth(authCfg))
		outbox.GET("", handler.ListOutboxEntries)
		outbox.POST("/requeue", handler.RequeueFailedOutboxEntries)
		outbox.POST("/:id/requeue", handler.RequeueOutboxEntry)
	}
}
