package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	v1 "github.com/deploydeck/api/v1"
	"github.com/deploydeck/config"
	"github.com/deploydeck/database"
	k8slib "github.com/deploydeck/lib/kubernetes"
	"github.com/deploydeck/repositories"
	"github.com/deploydeck/services"
	"github.com/deploydeck/utils"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize database connection
	database.Initialize()

	// Create Kubernetes client
	k8sClient, err := k8slib.NewClient()
	if err != nil {
		log.Fatalf("Failed to create Kubernetes client: %v", err)
	}

	namespace := config.GetEnv("KUBE_NAMESPACE", "default")

	// Wire the reconciliation core
	deploymentRepo := repositories.NewDeploymentRepository()
	applicationRepo := repositories.NewApplicationRepository()
	gateway := services.NewOrchestratorGateway(k8sClient, namespace)
	schema := utils.NewSpecSchema()

	svc := v1.Services{
		Applications: services.NewApplicationService(applicationRepo),
		Deployments:  services.NewDeploymentService(deploymentRepo, applicationRepo, gateway, schema),
		Stats:        services.NewDeploymentStatsService(deploymentRepo, k8sClient, namespace),
	}

	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Initialize router
	router := gin.Default()

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	router.GET("/", v1.HealthCheck)

	// API routes
	api := router.Group("/api")
	v1.RegisterRoutes(api, svc)

	// Get port from environment or use default
	port := config.GetEnv("PORT", "8080")

	// Start server
	log.Printf("🚀 DeployDeck starting on port %s (namespace %s)", port, namespace)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
