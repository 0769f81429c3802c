package dto

import (
	"time"

	"github.com/deploydeck/models"
)

// ApplicationSummary is the application shape embedded in deployment
// responses. The deployments list is always omitted to keep the payload
// flat.
type ApplicationSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DeploymentResponse represents a deployment response with its application
// populated as a separate field.
type DeploymentResponse struct {
	ID                 string               `json:"id"`
	ApplicationID      string               `json:"applicationId"`
	Name               string               `json:"name"`
	Image              string               `json:"image"`
	OwnerID            string               `json:"ownerId"`
	Replicas           int                  `json:"replicas"`
	AvailableReplicas  int                  `json:"availableReplicas"`
	Strategy           string               `json:"strategy"`
	MaxUnavailable     string               `json:"maxUnavailable,omitempty"`
	MaxSurge           string               `json:"maxSurge,omitempty"`
	EnvVars            map[string]string    `json:"envVars"`
	Labels             map[string]string    `json:"labels"`
	Paused             bool                 `json:"paused"`
	ObservedGeneration int64                `json:"observedGeneration"`
	DerivedStatus      string               `json:"derivedStatus"`
	LastSyncedAt       *time.Time           `json:"lastSyncedAt,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	Application        *ApplicationSummary  `json:"application,omitempty"`
}

// NewDeploymentResponseFromModel creates a DeploymentResponse from a record,
// shaping the populated application reference into its fixed output form.
func NewDeploymentResponseFromModel(deployment models.Deployment) DeploymentResponse {
	response := DeploymentResponse{
		ID:                 deployment.ID,
		ApplicationID:      deployment.ApplicationID,
		Name:               deployment.Name,
		Image:              deployment.Image,
		OwnerID:            deployment.OwnerID,
		Replicas:           deployment.Replicas,
		AvailableReplicas:  deployment.AvailableReplicas,
		Strategy:           string(deployment.Strategy),
		MaxUnavailable:     deployment.MaxUnavailable,
		MaxSurge:           deployment.MaxSurge,
		EnvVars:            deployment.EnvVars,
		Labels:             deployment.Labels,
		Paused:             deployment.Paused,
		ObservedGeneration: deployment.ObservedGeneration,
		DerivedStatus:      string(deployment.DerivedStatus),
		LastSyncedAt:       deployment.LastSyncedAt,
		CreatedAt:          deployment.CreatedAt,
	}

	if deployment.Application.ID != "" {
		response.Application = &ApplicationSummary{
			ID:          deployment.Application.ID,
			Name:        deployment.Application.Name,
			Description: deployment.Application.Description,
			OwnerID:     deployment.Application.OwnerID,
			CreatedAt:   deployment.Application.CreatedAt,
			UpdatedAt:   deployment.Application.UpdatedAt,
		}
	}

	return response
}

// DeploymentRevision describes one entry of a deployment's rollout history
type DeploymentRevision struct {
	Revision  int64     `json:"revision"`
	Image     string    `json:"image"`
	Replicas  int32     `json:"replicas"`
	CreatedAt time.Time `json:"createdAt"`
}
