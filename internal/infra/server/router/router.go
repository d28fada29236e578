// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/household-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/household-ledger/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	authController        *controller.AuthController
	groupController       *controller.GroupController
	provisioningRateLimit *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	groupController *controller.GroupController,
	provisioningRateLimit *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:      healthController,
		authController:        authController,
		groupController:       groupController,
		provisioningRateLimit: provisioningRateLimit,
		authMiddleware:        authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	// Initialization triggers (rate limited per identity)
	if r.authController != nil {
		limited := v1.Group("")
		if r.provisioningRateLimit != nil {
			limited.Use(r.provisioningRateLimit.Middleware())
		}
		{
			limited.GET("/me", r.authController.Me)
			limited.POST("/auth/initialize", r.authController.Initialize)
			limited.POST("/auth/repair", r.authMiddleware.RequireAccount(), r.authController.Repair)
		}
	}

	// Group ledger data (require an initialized account)
	if r.groupController != nil {
		groups := v1.Group("/groups")
		groups.Use(r.authMiddleware.RequireAccount())
		{
			groups.GET("/:id/categories", r.groupController.ListCategories)
			groups.GET("/:id/payment-methods", r.groupController.ListPaymentMethods)
		}
	}
}
