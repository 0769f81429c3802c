package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deploydeck/models"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
)

func newTestGateway(objects ...runtime.Object) *OrchestratorGateway {
	return &OrchestratorGateway{
		clientset: fake.NewSimpleClientset(objects...),
		namespace: "default",
		timeout:   time.Second,
	}
}

func clusterDeployment(name, image string) *appsv1.Deployment {
	replicas := int32(2)
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels:    map[string]string{"app": name},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app": name},
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{Name: "app", Image: image},
					},
				},
			},
		},
	}
}

func ownedReplicaSet(name, owner, revision, image string, age time.Duration) *appsv1.ReplicaSet {
	replicas := int32(2)
	return &appsv1.ReplicaSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         "default",
			CreationTimestamp: metav1.NewTime(time.Now().Add(-age)),
			Labels: map[string]string{
				"app": owner,
				appsv1.DefaultDeploymentUniqueLabelKey: name,
			},
			Annotations: map[string]string{
				revisionAnnotation: revision,
			},
		},
		Spec: appsv1.ReplicaSetSpec{
			Replicas: &replicas,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						"app": owner,
						appsv1.DefaultDeploymentUniqueLabelKey: name,
					},
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{Name: "app", Image: image},
					},
				},
			},
		},
	}
}

func TestGatewayCreateAndGet(t *testing.T) {
	gateway := newTestGateway()

	created, err := gateway.Create(clusterDeployment("web", "nginx:1.27"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Name != "web" {
		t.Errorf("created name = %q, want %q", created.Name, "web")
	}

	fetched, err := gateway.Get("web")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := fetched.Spec.Template.Spec.Containers[0].Image; got != "nginx:1.27" {
		t.Errorf("fetched image = %q, want %q", got, "nginx:1.27")
	}
}

func TestGatewayGetMissingIsNotFound(t *testing.T) {
	gateway := newTestGateway()

	_, err := gateway.Get("ghost")
	if kind := models.KindOf(err); kind != models.ErrNotFound {
		t.Errorf("error kind = %q, want %q", kind, models.ErrNotFound)
	}
}

func TestGatewayDeleteMissingIsNotFound(t *testing.T) {
	gateway := newTestGateway(clusterDeployment("web", "nginx:1.27"))

	if err := gateway.Delete("web"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err := gateway.Delete("web")
	if kind := models.KindOf(err); kind != models.ErrNotFound {
		t.Errorf("second delete kind = %q, want %q", kind, models.ErrNotFound)
	}
}

func TestGatewayCreateDuplicateIsRejected(t *testing.T) {
	gateway := newTestGateway(clusterDeployment("web", "nginx:1.27"))

	_, err := gateway.Create(clusterDeployment("web", "nginx:1.28"))
	if kind := models.KindOf(err); kind != models.ErrOrchestratorRejected {
		t.Errorf("error kind = %q, want %q", kind, models.ErrOrchestratorRejected)
	}
}

func TestGatewayRollbackRestoresTemplate(t *testing.T) {
	gateway := newTestGateway(
		clusterDeployment("web", "nginx:1.28"),
		ownedReplicaSet("web-aaa", "web", "1", "nginx:1.27", 2*time.Hour),
		ownedReplicaSet("web-bbb", "web", "2", "nginx:1.28", time.Hour),
	)

	restored, err := gateway.Rollback("web", 1)
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if got := restored.Spec.Template.Spec.Containers[0].Image; got != "nginx:1.27" {
		t.Errorf("restored image = %q, want %q", got, "nginx:1.27")
	}
	if _, leaked := restored.Spec.Template.Labels[appsv1.DefaultDeploymentUniqueLabelKey]; leaked {
		t.Error("pod-template-hash label leaked into the deployment template")
	}
}

func TestGatewayRollbackUnknownRevisionIsRejected(t *testing.T) {
	gateway := newTestGateway(
		clusterDeployment("web", "nginx:1.28"),
		ownedReplicaSet("web-aaa", "web", "1", "nginx:1.27", time.Hour),
	)

	_, err := gateway.Rollback("web", 9)
	if kind := models.KindOf(err); kind != models.ErrOrchestratorRejected {
		t.Errorf("error kind = %q, want %q", kind, models.ErrOrchestratorRejected)
	}
}

func TestGatewayHistoryNewestFirst(t *testing.T) {
	gateway := newTestGateway(
		clusterDeployment("web", "nginx:1.28"),
		ownedReplicaSet("web-aaa", "web", "1", "nginx:1.27", 2*time.Hour),
		ownedReplicaSet("web-bbb", "web", "2", "nginx:1.28", time.Hour),
	)

	history, err := gateway.History("web")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Revision != 2 || history[1].Revision != 1 {
		t.Errorf("history order = [%d, %d], want [2, 1]", history[0].Revision, history[1].Revision)
	}
	if history[0].Image != "nginx:1.28" {
		t.Errorf("newest image = %q, want %q", history[0].Image, "nginx:1.28")
	}
}

func TestClassifyOrchestratorError(t *testing.T) {
	deploymentsResource := schema.GroupResource{Group: "apps", Resource: "deployments"}

	tests := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{
			name: "not found",
			err:  apierrors.NewNotFound(deploymentsResource, "web"),
			want: models.ErrNotFound,
		},
		{
			name: "service unavailable",
			err:  apierrors.NewServiceUnavailable("apiserver down"),
			want: models.ErrOrchestratorUnavailable,
		},
		{
			name: "server timeout",
			err:  apierrors.NewTimeoutError("request timed out", 1),
			want: models.ErrOrchestratorUnavailable,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: models.ErrOrchestratorUnavailable,
		},
		{
			name: "bad request",
			err:  apierrors.NewBadRequest("spec is invalid"),
			want: models.ErrOrchestratorRejected,
		},
		{
			name: "already exists",
			err:  apierrors.NewAlreadyExists(deploymentsResource, "web"),
			want: models.ErrOrchestratorRejected,
		},
		{
			name: "transport failure",
			err:  errors.New("connection refused"),
			want: models.ErrOrchestratorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyOrchestratorError(tt.err, "web")
			if kind := models.KindOf(classified); kind != tt.want {
				t.Errorf("classified kind = %q, want %q", kind, tt.want)
			}
		})
	}

	if err := classifyOrchestratorError(nil, "web"); err != nil {
		t.Errorf("classifyOrchestratorError(nil) = %v, want nil", err)
	}
}
