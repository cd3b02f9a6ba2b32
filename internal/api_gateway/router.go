package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inbox-reconciler/internal/api_gateway/handler"
	"github.com/inbox-reconciler/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	matchingHandler *handler.MatchingHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Team-scoped operations
		teams := v1.Group("/teams/:team_id")
		{
			teams.POST("/matching-runs", matchingHandler.RequestRun)
			teams.POST("/transactions/import", transactionHandler.Import)
			teams.GET("/suggestions", matchingHandler.ListSuggestions)
		}

		// Batch diagnostics
		v1.POST("/transactions/duplicate-keys", transactionHandler.DuplicateKeys)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
