package v1

import (
	"net/http"

	"github.com/deploydeck/dto"
	"github.com/deploydeck/services"
	"github.com/gin-gonic/gin"
)

// ApplicationController handles application-related API endpoints
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController creates a new application controller
func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
	}
}

// RegisterRoutes registers application routes
func (ctrl *ApplicationController) RegisterRoutes(router *gin.RouterGroup) {
	applications := router.Group("/applications")
	{
		applications.GET("", ctrl.ListApplications)
		applications.POST("", ctrl.CreateApplication)
		applications.GET("/:id", ctrl.GetApplication)
		applications.DELETE("/:id", ctrl.DeleteApplication)
	}
}

// ListApplications retrieves applications visible to the principal
func (ctrl *ApplicationController) ListApplications(c *gin.Context) {
	applications, err := ctrl.applicationService.ListApplications(principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   applications,
	})
}

// CreateApplication creates a new application owned by the principal
func (ctrl *ApplicationController) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	application, err := ctrl.applicationService.CreateApplication(req, principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   application,
	})
}

// GetApplication retrieves a single application with its deployments
func (ctrl *ApplicationController) GetApplication(c *gin.Context) {
	application, err := ctrl.applicationService.GetApplication(c.Param("id"), principalFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   application,
	})
}

// DeleteApplication removes an application without live deployments
func (ctrl *ApplicationController) DeleteApplication(c *gin.Context) {
	if err := ctrl.applicationService.DeleteApplication(c.Param("id"), principalFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
