package utils

import (
	"strings"
	"testing"

	"github.com/deploydeck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigs.k8s.io/yaml"
)

const validDocument = `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 2
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: app
          image: nginx:1.27
`

func TestParseDocument_Valid(t *testing.T) {
	schema := NewSpecSchema()

	spec, err := schema.ParseDocument(validDocument)
	require.NoError(t, err)
	assert.Equal(t, "web", spec.Name)
	require.NotNil(t, spec.Spec.Replicas)
	assert.Equal(t, int32(2), *spec.Spec.Replicas)
	assert.Equal(t, "nginx:1.27", spec.Spec.Template.Spec.Containers[0].Image)
}

func TestParseDocument_Empty(t *testing.T) {
	schema := NewSpecSchema()

	_, err := schema.ParseDocument("   \n")
	require.Error(t, err)
	assert.Equal(t, models.ErrInvalidDefinition, models.KindOf(err))
}

func TestParseDocument_MalformedYAML(t *testing.T) {
	schema := NewSpecSchema()

	_, err := schema.ParseDocument("{{{ not yaml")
	require.Error(t, err)
	assert.Equal(t, models.ErrInvalidDefinition, models.KindOf(err))
}

func TestParseDocument_SchemaViolationsCarryDetails(t *testing.T) {
	schema := NewSpecSchema()
	document := strings.NewReplacer(
		"apps/v1", "apps/v1beta1",
		"image: nginx:1.27", "image: \"\"",
	).Replace(validDocument)

	_, err := schema.ParseDocument(document)
	require.Error(t, err)
	assert.Equal(t, models.ErrInvalidDefinition, models.KindOf(err))

	details := models.DetailsOf(err)
	require.Len(t, details, 2)
	assert.Contains(t, details[0], "apiVersion")
	assert.Contains(t, details[1], "image")
}

func TestParseDocument_RequiresContainers(t *testing.T) {
	schema := NewSpecSchema()

	_, err := schema.ParseDocument(`
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 1
`)
	require.Error(t, err)
	assert.Equal(t, models.ErrInvalidDefinition, models.KindOf(err))
	require.Len(t, models.DetailsOf(err), 1)
	assert.Contains(t, models.DetailsOf(err)[0], "containers")
}

// A spec built from structured fields must itself satisfy the document
// schema, so the two create paths accept the same shapes.
func TestBuiltSpecSatisfiesSchema(t *testing.T) {
	record := models.Deployment{
		Name:           "web",
		Image:          "nginx:1.27",
		Replicas:       2,
		Strategy:       models.StrategyRollingUpdate,
		MaxUnavailable: "25%",
		MaxSurge:       "25%",
		EnvVars:        models.EnvVars{"LOG_LEVEL": "info"},
	}

	raw, err := yaml.Marshal(BuildDeploymentSpec(record, "default"))
	require.NoError(t, err)

	schema := NewSpecSchema()
	parsed, err := schema.ParseDocument(string(raw))
	require.NoError(t, err)
	assert.Equal(t, record.Name, parsed.Name)
	assert.Equal(t, record.Image, parsed.Spec.Template.Spec.Containers[0].Image)
	require.NotNil(t, parsed.Spec.Replicas)
	assert.Equal(t, int32(record.Replicas), *parsed.Spec.Replicas)
	assert.Equal(t, record.EnvVars, EnvVarsToMap(parsed.Spec.Template.Spec.Containers[0].Env))
}
