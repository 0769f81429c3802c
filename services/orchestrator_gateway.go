package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/deploydeck/dto"
	k8slib "github.com/deploydeck/lib/kubernetes"
	"github.com/deploydeck/models"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// revisionAnnotation is set by the deployment controller on every owned
// ReplicaSet and identifies its rollout revision.
const revisionAnnotation = "deployment.kubernetes.io/revision"

const defaultCallTimeout = 15 * time.Second

// Gateway is the contract the reconciliation service depends on. The
// concrete gateway is the only component permitted to talk to the cluster.
type Gateway interface {
	Create(deployment *appsv1.Deployment) (*appsv1.Deployment, error)
	Get(name string) (*appsv1.Deployment, error)
	Update(deployment *appsv1.Deployment) (*appsv1.Deployment, error)
	Delete(name string) error
	Scale(name string, replicas int32) (*appsv1.Deployment, error)
	Rollback(name string, revision int64) (*appsv1.Deployment, error)
	History(name string) ([]dto.DeploymentRevision, error)
	Namespace() string
}

// OrchestratorGateway implements Gateway against the cluster API with
// normalized error mapping and a bounded timeout per call.
type OrchestratorGateway struct {
	clientset kubernetes.Interface
	namespace string
	timeout   time.Duration
}

// NewOrchestratorGateway creates a gateway bound to a single namespace.
func NewOrchestratorGateway(client *k8slib.Client, namespace string) *OrchestratorGateway {
	return &OrchestratorGateway{
		clientset: client.Clientset,
		namespace: namespace,
		timeout:   defaultCallTimeout,
	}
}

// Namespace returns the cluster namespace this gateway operates in.
func (g *OrchestratorGateway) Namespace() string {
	return g.namespace
}

func (g *OrchestratorGateway) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}

// Create creates the deployment cluster-side and returns the cluster's
// representation of it.
func (g *OrchestratorGateway) Create(deployment *appsv1.Deployment) (*appsv1.Deployment, error) {
	ctx, cancel := g.callContext()
	defer cancel()

	created, err := g.clientset.AppsV1().Deployments(g.namespace).Create(ctx, deployment, metav1.CreateOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, deployment.Name)
	}
	return created, nil
}

// Get fetches the current cluster representation of a deployment.
func (g *OrchestratorGateway) Get(name string) (*appsv1.Deployment, error) {
	ctx, cancel := g.callContext()
	defer cancel()

	deployment, err := g.clientset.AppsV1().Deployments(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}
	return deployment, nil
}

// Update pushes a full deployment spec to the cluster.
func (g *OrchestratorGateway) Update(deployment *appsv1.Deployment) (*appsv1.Deployment, error) {
	ctx, cancel := g.callContext()
	defer cancel()

	updated, err := g.clientset.AppsV1().Deployments(g.namespace).Update(ctx, deployment, metav1.UpdateOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, deployment.Name)
	}
	return updated, nil
}

// Delete removes the deployment cluster-side. A missing resource is
// surfaced as NotFound so callers can treat repeat deletes as idempotent.
func (g *OrchestratorGateway) Delete(name string) error {
	ctx, cancel := g.callContext()
	defer cancel()

	err := g.clientset.AppsV1().Deployments(g.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	return classifyOrchestratorError(err, name)
}

// Scale changes the desired replica count through the scale subresource and
// returns the refreshed deployment.
func (g *OrchestratorGateway) Scale(name string, replicas int32) (*appsv1.Deployment, error) {
	if replicas < 0 {
		replicas = 0
	}

	ctx, cancel := g.callContext()
	defer cancel()

	scale, err := g.clientset.AppsV1().Deployments(g.namespace).GetScale(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	scale.Spec.Replicas = replicas
	_, err = g.clientset.AppsV1().Deployments(g.namespace).UpdateScale(ctx, name, scale, metav1.UpdateOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	return g.Get(name)
}

// Rollback restores the pod template of an earlier revision. The target
// revision is located through the ReplicaSets owned by the deployment; a
// revision the cluster does not have is an explicit rejection.
func (g *OrchestratorGateway) Rollback(name string, revision int64) (*appsv1.Deployment, error) {
	ctx, cancel := g.callContext()
	defer cancel()

	deployment, err := g.clientset.AppsV1().Deployments(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	replicaSets, err := g.ownedReplicaSets(ctx, deployment)
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	target := strconv.FormatInt(revision, 10)
	for _, rs := range replicaSets {
		if rs.Annotations[revisionAnnotation] != target {
			continue
		}

		template := rs.Spec.Template.DeepCopy()
		// The controller stamps pod-template-hash on ReplicaSet templates;
		// it must not leak back into the deployment spec.
		delete(template.Labels, appsv1.DefaultDeploymentUniqueLabelKey)

		deployment.Spec.Template = *template
		updated, err := g.clientset.AppsV1().Deployments(g.namespace).Update(ctx, deployment, metav1.UpdateOptions{})
		if err != nil {
			return nil, classifyOrchestratorError(err, name)
		}
		return updated, nil
	}

	return nil, models.NewOrchestratorRejected(fmt.Sprintf("revision %d not found for deployment %q", revision, name), nil)
}

// History lists the rollout revisions of a deployment, newest first.
func (g *OrchestratorGateway) History(name string) ([]dto.DeploymentRevision, error) {
	ctx, cancel := g.callContext()
	defer cancel()

	deployment, err := g.clientset.AppsV1().Deployments(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	replicaSets, err := g.ownedReplicaSets(ctx, deployment)
	if err != nil {
		return nil, classifyOrchestratorError(err, name)
	}

	revisions := make([]dto.DeploymentRevision, 0, len(replicaSets))
	for _, rs := range replicaSets {
		revision, err := strconv.ParseInt(rs.Annotations[revisionAnnotation], 10, 64)
		if err != nil {
			continue
		}

		image := ""
		if len(rs.Spec.Template.Spec.Containers) > 0 {
			image = rs.Spec.Template.Spec.Containers[0].Image
		}

		var replicas int32
		if rs.Spec.Replicas != nil {
			replicas = *rs.Spec.Replicas
		}

		revisions = append(revisions, dto.DeploymentRevision{
			Revision:  revision,
			Image:     image,
			Replicas:  replicas,
			CreatedAt: rs.CreationTimestamp.Time,
		})
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].Revision > revisions[j].Revision
	})

	return revisions, nil
}

func (g *OrchestratorGateway) ownedReplicaSets(ctx context.Context, deployment *appsv1.Deployment) ([]appsv1.ReplicaSet, error) {
	selector := metav1.FormatLabelSelector(deployment.Spec.Selector)
	rsList, err := g.clientset.AppsV1().ReplicaSets(g.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, err
	}
	return rsList.Items, nil
}

// classifyOrchestratorError maps cluster API failures onto the stable
// error taxonomy: NotFound for missing resources, OrchestratorRejected
// when the API explicitly refused the request, OrchestratorUnavailable
// for transport-level failures and timeouts.
func classifyOrchestratorError(err error, name string) error {
	if err == nil {
		return nil
	}

	switch {
	case apierrors.IsNotFound(err):
		return models.NewNotFound(fmt.Sprintf("deployment %q not found in cluster", name))
	case apierrors.IsTimeout(err),
		apierrors.IsServerTimeout(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsInternalError(err):
		return models.NewOrchestratorUnavailable(fmt.Sprintf("cluster API unavailable for deployment %q", name), err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewOrchestratorUnavailable(fmt.Sprintf("cluster API call timed out for deployment %q", name), err)
	}

	var statusErr *apierrors.StatusError
	if errors.As(err, &statusErr) {
		return models.NewOrchestratorRejected(fmt.Sprintf("cluster API rejected the request for deployment %q: %s", name, statusErr.ErrStatus.Message), err)
	}

	return models.NewOrchestratorUnavailable(fmt.Sprintf("cluster API unreachable for deployment %q", name), err)
}
