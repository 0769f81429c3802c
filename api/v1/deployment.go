package v1

import (
	"net/http"

	"github.com/deploydeck/dto"
	"github.com/deploydeck/services"
	"github.com/gin-gonic/gin"
)

// DeploymentController handles deployment-related API endpoints
type DeploymentController struct {
	deploymentService *services.DeploymentService
	statsService      *services.DeploymentStatsService
}

// NewDeploymentController creates a new deployment controller
func NewDeploymentController(deploymentService *services.DeploymentService, statsService *services.DeploymentStatsService) *DeploymentController {
	return &DeploymentController{
		deploymentService: deploymentService,
		statsService:      statsService,
	}
}

// RegisterRoutes registers deployment routes
func (ctrl *DeploymentController) RegisterRoutes(router *gin.RouterGroup) {
	deployments := router.Group("/deployments")
	{
		deployments.GET("", ctrl.ListDeployments)
		deployments.POST("", ctrl.CreateDeployment)
		deployments.POST("/from-yaml", ctrl.CreateDeploymentFromYAML)
		deployments.GET("/:id", ctrl.GetDeployment)
		deployments.PUT("/:id", ctrl.UpdateDeployment)
		deployments.PATCH("/:id/scale", ctrl.ScaleDeployment)
		deployments.POST("/:id/rollback", ctrl.RollbackDeployment)
		deployments.GET("/:id/history", ctrl.GetDeploymentHistory)
		deployments.GET("/:id/stats", ctrl.GetDeploymentStats)
		deployments.DELETE("/:id", ctrl.DeleteDeployment)
	}
}

// ListDeployments retrieves deployments visible to the principal
func (ctrl *DeploymentController) ListDeployments(c *gin.Context) {
	deployments, err := ctrl.deploymentService.ListDeployments(principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   deployments,
	})
}

// CreateDeployment creates a deployment from structured fields
func (ctrl *DeploymentController) CreateDeployment(c *gin.Context) {
	var req dto.CreateDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	deployment, err := ctrl.deploymentService.CreateDeployment(req, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// CreateDeploymentFromYAML creates a deployment from a YAML definition
func (ctrl *DeploymentController) CreateDeploymentFromYAML(c *gin.Context) {
	var req dto.CreateFromYAMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	deployment, err := ctrl.deploymentService.CreateDeploymentFromDocument(req, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// GetDeployment retrieves a deployment, refreshing its derived status
func (ctrl *DeploymentController) GetDeployment(c *gin.Context) {
	deployment, err := ctrl.deploymentService.GetDeployment(c.Param("id"), principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// UpdateDeployment applies mutable field changes to a deployment
func (ctrl *DeploymentController) UpdateDeployment(c *gin.Context) {
	var req dto.UpdateDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	deployment, err := ctrl.deploymentService.UpdateDeployment(c.Param("id"), req, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// ScaleDeployment changes the desired replica count of a deployment
func (ctrl *DeploymentController) ScaleDeployment(c *gin.Context) {
	var req dto.ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	deployment, err := ctrl.deploymentService.ScaleDeployment(c.Param("id"), *req.Replicas, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// RollbackDeployment rolls a deployment back to an earlier revision
func (ctrl *DeploymentController) RollbackDeployment(c *gin.Context) {
	var req dto.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	deployment, err := ctrl.deploymentService.RollbackDeployment(c.Param("id"), req.Revision, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   deployment,
	})
}

// GetDeploymentHistory returns the rollout revisions of a deployment
func (ctrl *DeploymentController) GetDeploymentHistory(c *gin.Context) {
	history, err := ctrl.deploymentService.GetDeploymentHistory(c.Param("id"), principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   history,
	})
}

// GetDeploymentStats returns aggregated pod resource usage
func (ctrl *DeploymentController) GetDeploymentStats(c *gin.Context) {
	stats, err := ctrl.statsService.GetDeploymentStats(c.Param("id"), principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}

// DeleteDeployment removes a deployment cluster-side and locally
func (ctrl *DeploymentController) DeleteDeployment(c *gin.Context) {
	if err := ctrl.deploymentService.DeleteDeployment(c.Param("id"), principalFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
