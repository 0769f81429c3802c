package utils

import (
	"testing"

	"github.com/deploydeck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsv1 "k8s.io/api/apps/v1"
)

func validRecord() models.Deployment {
	return models.Deployment{
		Name:           "web",
		Image:          "nginx:1.27",
		Replicas:       3,
		Strategy:       models.StrategyRollingUpdate,
		MaxUnavailable: "25%",
		MaxSurge:       "1",
		EnvVars:        models.EnvVars{"LOG_LEVEL": "info"},
		Labels:         models.Labels{"team": "platform"},
	}
}

func TestValidateDeploymentFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Deployment)
		wantErr bool
	}{
		{
			name:   "valid rolling update",
			mutate: func(d *models.Deployment) {},
		},
		{
			name: "valid recreate",
			mutate: func(d *models.Deployment) {
				d.Strategy = models.StrategyRecreate
				d.MaxUnavailable = ""
				d.MaxSurge = ""
			},
		},
		{
			name:    "missing image",
			mutate:  func(d *models.Deployment) { d.Image = "" },
			wantErr: true,
		},
		{
			name: "rolling update without surge parameters",
			mutate: func(d *models.Deployment) {
				d.MaxUnavailable = ""
			},
			wantErr: true,
		},
		{
			name: "recreate with surge parameters",
			mutate: func(d *models.Deployment) {
				d.Strategy = models.StrategyRecreate
			},
			wantErr: true,
		},
		{
			name:    "unknown strategy",
			mutate:  func(d *models.Deployment) { d.Strategy = "BlueGreen" },
			wantErr: true,
		},
		{
			name:    "negative replicas",
			mutate:  func(d *models.Deployment) { d.Replicas = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(&record)

			err := ValidateDeploymentFields(record)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, models.ErrValidation, models.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildDeploymentSpec(t *testing.T) {
	record := validRecord()
	spec := BuildDeploymentSpec(record, "staging")

	assert.Equal(t, "web", spec.Name)
	assert.Equal(t, "staging", spec.Namespace)
	require.NotNil(t, spec.Spec.Replicas)
	assert.Equal(t, int32(3), *spec.Spec.Replicas)

	require.Len(t, spec.Spec.Template.Spec.Containers, 1)
	container := spec.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "nginx:1.27", container.Image)
	require.Len(t, container.Env, 1)
	assert.Equal(t, "LOG_LEVEL", container.Env[0].Name)

	assert.Equal(t, appsv1.RollingUpdateDeploymentStrategyType, spec.Spec.Strategy.Type)
	require.NotNil(t, spec.Spec.Strategy.RollingUpdate)
	assert.Equal(t, "25%", spec.Spec.Strategy.RollingUpdate.MaxUnavailable.String())
	assert.Equal(t, "1", spec.Spec.Strategy.RollingUpdate.MaxSurge.String())

	assert.Equal(t, map[string]string{"app": "web"}, spec.Spec.Selector.MatchLabels)
	assert.Equal(t, "web", spec.Spec.Template.Labels["app"])
	assert.Equal(t, "platform", spec.Labels["team"])
}

func TestBuildDeploymentSpec_DefaultsReplicasToOne(t *testing.T) {
	record := validRecord()
	record.Replicas = 0

	spec := BuildDeploymentSpec(record, "default")
	require.NotNil(t, spec.Spec.Replicas)
	assert.Equal(t, int32(1), *spec.Spec.Replicas)
}

func TestBuildDeploymentSpec_RecreateHasNoRollingUpdate(t *testing.T) {
	record := validRecord()
	record.Strategy = models.StrategyRecreate
	record.MaxUnavailable = ""
	record.MaxSurge = ""

	spec := BuildDeploymentSpec(record, "default")
	assert.Equal(t, appsv1.RecreateDeploymentStrategyType, spec.Spec.Strategy.Type)
	assert.Nil(t, spec.Spec.Strategy.RollingUpdate)
}

func TestGetResourceLabels_AppLabelWins(t *testing.T) {
	record := validRecord()
	record.Labels = models.Labels{"app": "spoofed", "team": "platform"}

	labels := GetResourceLabels(record)
	assert.Equal(t, "web", labels["app"])
	assert.Equal(t, "platform", labels["team"])
}

func TestApplyDeploymentFields_PreservesClusterManagedState(t *testing.T) {
	baseline := BuildDeploymentSpec(validRecord(), "default")
	baseline.Spec.Template.Spec.ServiceAccountName = "web-sa"
	baseline.Annotations = map[string]string{"deployment.kubernetes.io/revision": "4"}

	changed := validRecord()
	changed.Image = "nginx:1.28"
	changed.Replicas = 5
	changed.Paused = true
	changed.EnvVars = models.EnvVars{"LOG_LEVEL": "debug"}

	ApplyDeploymentFields(baseline, changed)

	require.NotNil(t, baseline.Spec.Replicas)
	assert.Equal(t, int32(5), *baseline.Spec.Replicas)
	assert.True(t, baseline.Spec.Paused)
	assert.Equal(t, "nginx:1.28", baseline.Spec.Template.Spec.Containers[0].Image)
	assert.Equal(t, "debug", baseline.Spec.Template.Spec.Containers[0].Env[0].Value)

	assert.Equal(t, "web-sa", baseline.Spec.Template.Spec.ServiceAccountName)
	assert.Equal(t, "4", baseline.Annotations["deployment.kubernetes.io/revision"])
	assert.Equal(t, map[string]string{"app": "web"}, baseline.Spec.Selector.MatchLabels)
}

func TestEnvVarsRoundTrip(t *testing.T) {
	envVars := models.EnvVars{"A": "1", "B": "2"}
	assert.Equal(t, envVars, EnvVarsToMap(createEnvVarsFromMap(envVars)))
}
