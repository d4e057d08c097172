package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"payflow-backend/internal/shared/middleware"
	"payflow-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps webhook payload size. Stripe events are a few KB.
const maxWebhookBody = 64 << 10

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	// Liveness probe. No DB round-trip.
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payflow"})
	})

	// Readiness probe, includes the database.
	router.GET("/health", healthCheckHandler(c))

	// Stripe delivers every event type to a single endpoint; classification
	// happens in the webhook service.
	router.POST("/webhook", middleware.BodyLimit(maxWebhookBody), c.WebhookHandler.HandleStripeWebhook)

	return router
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.Ping(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
