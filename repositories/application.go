package repositories

import (
	"github.com/deploydeck/database"
	"github.com/deploydeck/models"
)

// ApplicationRepository handles database operations for applications
type ApplicationRepository struct{}

// NewApplicationRepository creates a new application repository instance
func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{}
}

// Create inserts a new application into the database
func (r *ApplicationRepository) Create(application models.Application) (models.Application, error) {
	result := database.DB.Create(&application)
	return application, result.Error
}

// FindByID retrieves an application by its ID
func (r *ApplicationRepository) FindByID(id string) (models.Application, error) {
	var application models.Application
	result := database.DB.First(&application, "id = ?", id)
	return application, notFoundMapped(result.Error, "application not found")
}

// FindByIDWithDeployments loads an application with its deployments
func (r *ApplicationRepository) FindByIDWithDeployments(id string) (models.Application, error) {
	var application models.Application
	result := database.DB.Preload("Deployments").First(&application, "id = ?", id)
	return application, notFoundMapped(result.Error, "application not found")
}

// FindAll retrieves all applications
func (r *ApplicationRepository) FindAll() ([]models.Application, error) {
	var applications []models.Application
	result := database.DB.Order("created_at DESC").Find(&applications)
	return applications, result.Error
}

// FindByOwnerID retrieves all applications owned by a user
func (r *ApplicationRepository) FindByOwnerID(ownerID string) ([]models.Application, error) {
	var applications []models.Application
	result := database.DB.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&applications)
	return applications, result.Error
}

// CountLiveDeployments counts the live deployments indexed by an application
func (r *ApplicationRepository) CountLiveDeployments(id string) (int64, error) {
	var count int64
	result := database.DB.Model(&models.Deployment{}).Where("application_id = ?", id).Count(&count)
	return count, result.Error
}

// Delete removes an application from the database (soft delete)
func (r *ApplicationRepository) Delete(id string) error {
	result := database.DB.Delete(&models.Application{}, "id = ?", id)
	return result.Error
}
