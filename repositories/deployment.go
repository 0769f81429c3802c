package repositories

import (
	"errors"

	"github.com/deploydeck/database"
	"github.com/deploydeck/models"
	"gorm.io/gorm"
)

// DeploymentRepository handles database operations for deployments
type DeploymentRepository struct{}

// NewDeploymentRepository creates a new deployment repository instance
func NewDeploymentRepository() *DeploymentRepository {
	return &DeploymentRepository{}
}

// Create inserts a new deployment into the database
func (r *DeploymentRepository) Create(deployment models.Deployment) (models.Deployment, error) {
	result := database.DB.Create(&deployment)
	return deployment, result.Error
}

// Save persists all fields of an existing deployment
func (r *DeploymentRepository) Save(deployment models.Deployment) error {
	result := database.DB.Save(&deployment)
	return result.Error
}

// FindByID retrieves a deployment by its ID
func (r *DeploymentRepository) FindByID(id string) (models.Deployment, error) {
	var deployment models.Deployment
	result := database.DB.First(&deployment, "id = ?", id)
	return deployment, notFoundMapped(result.Error, "deployment not found")
}

// FindByIDWithApplication retrieves a deployment with its application populated
func (r *DeploymentRepository) FindByIDWithApplication(id string) (models.Deployment, error) {
	var deployment models.Deployment
	result := database.DB.Preload("Application").First(&deployment, "id = ?", id)
	return deployment, notFoundMapped(result.Error, "deployment not found")
}

// FindAllWithApplication retrieves all deployments with applications populated
func (r *DeploymentRepository) FindAllWithApplication() ([]models.Deployment, error) {
	var deployments []models.Deployment
	result := database.DB.Preload("Application").Order("created_at DESC").Find(&deployments)
	return deployments, result.Error
}

// FindByOwnerIDWithApplication retrieves all deployments owned by a user
func (r *DeploymentRepository) FindByOwnerIDWithApplication(ownerID string) ([]models.Deployment, error) {
	var deployments []models.Deployment
	result := database.DB.Preload("Application").Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&deployments)
	return deployments, result.Error
}

// NameInUse checks whether a name is taken by any live deployment
func (r *DeploymentRepository) NameInUse(name string) (bool, error) {
	var count int64
	result := database.DB.Model(&models.Deployment{}).Where("name = ?", name).Count(&count)
	return count > 0, result.Error
}

// Delete removes a deployment from the database (soft delete)
func (r *DeploymentRepository) Delete(id string) error {
	result := database.DB.Delete(&models.Deployment{}, "id = ?", id)
	return result.Error
}

// notFoundMapped converts gorm's record-not-found into the stable NotFound kind
func notFoundMapped(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFound(message)
	}
	return err
}
