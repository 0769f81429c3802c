package utils

import (
	"fmt"
	"strings"

	"github.com/deploydeck/models"

	appsv1 "k8s.io/api/apps/v1"
	"sigs.k8s.io/yaml"
)

// SpecSchema describes the minimal shape a deployment definition document
// must satisfy before it is handed to the orchestrator. It is constructed
// once at process start and passed explicitly to its consumers; it holds
// no mutable state.
type SpecSchema struct {
	APIVersion string
	Kind       string
}

// NewSpecSchema returns the schema for apps/v1 Deployment documents.
func NewSpecSchema() *SpecSchema {
	return &SpecSchema{
		APIVersion: "apps/v1",
		Kind:       "Deployment",
	}
}

// ParseDocument parses a raw YAML deployment definition and validates it
// against the schema. Parse failures and schema violations are both
// reported as InvalidDeploymentDefinition with the underlying detail.
func (s *SpecSchema) ParseDocument(raw string) (*appsv1.Deployment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.NewInvalidDefinition("deployment definition is empty", nil, nil)
	}

	var deployment appsv1.Deployment
	if err := yaml.Unmarshal([]byte(raw), &deployment); err != nil {
		return nil, models.NewInvalidDefinition("malformed YAML document", nil, err)
	}

	if violations := s.Check(&deployment); len(violations) > 0 {
		return nil, models.NewInvalidDefinition("document does not match the deployment schema", violations, nil)
	}

	return &deployment, nil
}

// Check validates a parsed document against the schema and returns the
// list of violated constraints. Pure function of its inputs.
func (s *SpecSchema) Check(deployment *appsv1.Deployment) []string {
	var violations []string

	if deployment.APIVersion != s.APIVersion {
		violations = append(violations, fmt.Sprintf("apiVersion must be %q, got %q", s.APIVersion, deployment.APIVersion))
	}
	if deployment.Kind != s.Kind {
		violations = append(violations, fmt.Sprintf("kind must be %q, got %q", s.Kind, deployment.Kind))
	}

	containers := deployment.Spec.Template.Spec.Containers
	if len(containers) == 0 {
		violations = append(violations, "spec.template.spec.containers must contain at least one container")
	}
	for i, container := range containers {
		if container.Image == "" {
			violations = append(violations, fmt.Sprintf("spec.template.spec.containers[%d] is missing an image", i))
		}
	}

	return violations
}
