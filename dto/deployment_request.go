package dto

// CreateDeploymentRequest represents the structured create input
type CreateDeploymentRequest struct {
	ApplicationID  string            `json:"applicationId" binding:"required"`
	Name           string            `json:"name" binding:"required"`
	Image          string            `json:"image" binding:"required"`
	Replicas       *int              `json:"replicas"`
	Paused         bool              `json:"paused"`
	EnvVars        map[string]string `json:"envVars"`
	Labels         map[string]string `json:"labels"`
	Strategy       string            `json:"strategy"`
	MaxUnavailable string            `json:"maxUnavailable"`
	MaxSurge       string            `json:"maxSurge"`
}

// CreateFromYAMLRequest represents a deployment definition document submission
type CreateFromYAMLRequest struct {
	ApplicationID  string `json:"applicationId" binding:"required"`
	YAMLDefinition string `json:"yamlDefinition" binding:"required"`
}

// UpdateDeploymentRequest represents the mutable fields of a deployment.
// Name and owner are immutable after creation.
type UpdateDeploymentRequest struct {
	Image          string            `json:"image" binding:"required"`
	Replicas       *int              `json:"replicas"`
	Paused         *bool             `json:"paused"`
	EnvVars        map[string]string `json:"envVars"`
	Labels         map[string]string `json:"labels"`
	Strategy       string            `json:"strategy"`
	MaxUnavailable string            `json:"maxUnavailable"`
	MaxSurge       string            `json:"maxSurge"`
}

// ScaleRequest represents a replica count change
type ScaleRequest struct {
	Replicas *int `json:"replicas" binding:"required"`
}

// RollbackRequest represents a rollback to an earlier revision
type RollbackRequest struct {
	Revision int64 `json:"revision" binding:"required"`
}
