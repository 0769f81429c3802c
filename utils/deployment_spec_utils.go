package utils

import (
	"fmt"

	"github.com/deploydeck/models"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

const mainContainerName = "app"

// ValidateDeploymentFields checks structured deployment input before any
// cluster or record-store call is made.
func ValidateDeploymentFields(d models.Deployment) error {
	if d.Image == "" {
		return models.NewValidationError("image is required")
	}

	switch d.Strategy {
	case models.StrategyRollingUpdate:
		if d.MaxUnavailable == "" || d.MaxSurge == "" {
			return models.NewValidationError("maxUnavailable and maxSurge are required for the RollingUpdate strategy")
		}
	case models.StrategyRecreate:
		if d.MaxUnavailable != "" || d.MaxSurge != "" {
			return models.NewValidationError("maxUnavailable and maxSurge are only valid for the RollingUpdate strategy")
		}
	default:
		return models.NewValidationError(fmt.Sprintf("strategy must be one of RollingUpdate, Recreate; got %q", d.Strategy))
	}

	if d.Replicas < 0 {
		return models.NewValidationError("replicas cannot be negative")
	}

	return nil
}

// BuildDeploymentSpec translates a deployment record into the
// orchestrator-native deployment specification. Pure transform: it never
// mutates shared state and performs no network calls.
func BuildDeploymentSpec(d models.Deployment, namespace string) *appsv1.Deployment {
	replicas := int32(d.Replicas)
	if replicas == 0 {
		replicas = 1
	}

	labels := GetResourceLabels(d)

	deployment := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.Name,
			Namespace: namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Paused:   d.Paused,
			Strategy: buildStrategy(d),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{
					"app": d.Name,
				},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  mainContainerName,
							Image: d.Image,
							Env:   createEnvVarsFromMap(d.EnvVars),
						},
					},
				},
			},
		},
	}

	return deployment
}

// ApplyDeploymentFields projects the record's mutable fields onto a
// cluster-fetched baseline spec, preserving everything else the cluster
// manages. Used by update so changes apply against current truth rather
// than a locally rebuilt spec.
func ApplyDeploymentFields(baseline *appsv1.Deployment, d models.Deployment) {
	replicas := int32(d.Replicas)
	baseline.Spec.Replicas = &replicas
	baseline.Spec.Paused = d.Paused
	baseline.Spec.Strategy = buildStrategy(d)

	if len(baseline.Spec.Template.Spec.Containers) > 0 {
		baseline.Spec.Template.Spec.Containers[0].Image = d.Image
		baseline.Spec.Template.Spec.Containers[0].Env = createEnvVarsFromMap(d.EnvVars)
	}

	for key, value := range d.Labels {
		if baseline.Labels == nil {
			baseline.Labels = make(map[string]string)
		}
		baseline.Labels[key] = value
	}
}

// GetResourceLabels returns the labels applied to every cluster resource
// managed for a deployment record. User labels never override the app label.
func GetResourceLabels(d models.Deployment) map[string]string {
	labels := make(map[string]string, len(d.Labels)+1)
	for key, value := range d.Labels {
		labels[key] = value
	}
	labels["app"] = d.Name
	return labels
}

func buildStrategy(d models.Deployment) appsv1.DeploymentStrategy {
	if d.Strategy == models.StrategyRecreate {
		return appsv1.DeploymentStrategy{
			Type: appsv1.RecreateDeploymentStrategyType,
		}
	}

	maxUnavailable := intstr.Parse(d.MaxUnavailable)
	maxSurge := intstr.Parse(d.MaxSurge)
	return appsv1.DeploymentStrategy{
		Type: appsv1.RollingUpdateDeploymentStrategyType,
		RollingUpdate: &appsv1.RollingUpdateDeployment{
			MaxUnavailable: &maxUnavailable,
			MaxSurge:       &maxSurge,
		},
	}
}

// Helper function to convert environment variables map to Kubernetes EnvVar slice
func createEnvVarsFromMap(envVars models.EnvVars) []corev1.EnvVar {
	if len(envVars) == 0 {
		return nil
	}

	result := make([]corev1.EnvVar, 0, len(envVars))
	for key, value := range envVars {
		result = append(result, corev1.EnvVar{
			Name:  key,
			Value: value,
		})
	}

	return result
}

// EnvVarsToMap converts a container env list back into the record's map form.
func EnvVarsToMap(env []corev1.EnvVar) models.EnvVars {
	result := make(models.EnvVars, len(env))
	for _, item := range env {
		result[item.Name] = item.Value
	}
	return result
}
