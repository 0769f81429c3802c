package v1

import (
	"github.com/deploydeck/middleware"
	"github.com/deploydeck/services"
	"github.com/gin-gonic/gin"
)

// Services bundles the constructed service layer for route registration.
type Services struct {
	Applications *services.ApplicationService
	Deployments  *services.DeploymentService
	Stats        *services.DeploymentStatsService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, svc Services) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Auth endpoints
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", Register)
		authGroup.POST("/login", Login)
		// Use auth middleware here only for the /me endpoint
		authGroup.GET("/me", middleware.AuthMiddleware(), GetCurrentUser)
	}

	// Application and deployment endpoints - protected by AuthMiddleware
	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware())

	applicationController := NewApplicationController(svc.Applications)
	applicationController.RegisterRoutes(authRouter)

	deploymentController := NewDeploymentController(svc.Deployments, svc.Stats)
	deploymentController.RegisterRoutes(authRouter)

	// Admin endpoints - protected by AdminMiddleware
	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("/users", ListUsers)
	}
}
