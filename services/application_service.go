package services

import (
	"github.com/deploydeck/dto"
	"github.com/deploydeck/models"
)

// ApplicationStore is the record repository contract for applications.
// Implementations return a NotFound-kind error when a record is absent.
type ApplicationStore interface {
	Create(application models.Application) (models.Application, error)
	FindByID(id string) (models.Application, error)
	FindByIDWithDeployments(id string) (models.Application, error)
	FindAll() ([]models.Application, error)
	FindByOwnerID(ownerID string) ([]models.Application, error)
	CountLiveDeployments(id string) (int64, error)
	Delete(id string) error
}

// ApplicationService handles business logic for application records
type ApplicationService struct {
	applications ApplicationStore
}

// NewApplicationService creates a new application service instance
func NewApplicationService(applications ApplicationStore) *ApplicationService {
	return &ApplicationService{applications: applications}
}

// CreateApplication creates an application owned by the principal.
func (s *ApplicationService) CreateApplication(req dto.CreateApplicationRequest, principal models.Principal) (models.Application, error) {
	application := models.Application{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     principal.ID,
	}
	return s.applications.Create(application)
}

// GetApplication retrieves an application with its deployments.
func (s *ApplicationService) GetApplication(id string, principal models.Principal) (models.Application, error) {
	application, err := s.applications.FindByIDWithDeployments(id)
	if err != nil {
		return application, err
	}

	if err := Authorize(principal, application.OwnerID, "access"); err != nil {
		return models.Application{}, err
	}

	return application, nil
}

// ListApplications returns applications visible to the principal.
func (s *ApplicationService) ListApplications(principal models.Principal) ([]models.Application, error) {
	if principal.IsAdmin() {
		return s.applications.FindAll()
	}
	return s.applications.FindByOwnerID(principal.ID)
}

// DeleteApplication removes an application record. Applications still
// indexing live deployments are refused so no deployment is left with a
// dangling parent reference.
func (s *ApplicationService) DeleteApplication(id string, principal models.Principal) error {
	application, err := s.applications.FindByID(id)
	if err != nil {
		return err
	}

	if err := Authorize(principal, application.OwnerID, "delete"); err != nil {
		return err
	}

	count, err := s.applications.CountLiveDeployments(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.NewValidationError("application still has live deployments; delete them first")
	}

	return s.applications.Delete(id)
}
