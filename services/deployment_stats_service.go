package services

import (
	"context"
	"fmt"
	"time"

	"github.com/deploydeck/dto"
	k8slib "github.com/deploydeck/lib/kubernetes"
	"github.com/deploydeck/models"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/client/clientset/versioned"
)

// DeploymentStatsService aggregates pod resource usage for a deployment
// through the cluster metrics API.
type DeploymentStatsService struct {
	deployments DeploymentStore
	metrics     metricsv1beta1.Interface
	namespace   string
	timeout     time.Duration
}

// NewDeploymentStatsService creates a new deployment stats service instance
func NewDeploymentStatsService(deployments DeploymentStore, client *k8slib.Client, namespace string) *DeploymentStatsService {
	return &DeploymentStatsService{
		deployments: deployments,
		metrics:     client.MetricsClient,
		namespace:   namespace,
		timeout:     defaultCallTimeout,
	}
}

// GetDeploymentStats sums CPU and memory usage over the pods of a
// deployment, identified by its app label.
func (s *DeploymentStatsService) GetDeploymentStats(id string, principal models.Principal) (dto.DeploymentStatsResponse, error) {
	record, err := s.deployments.FindByID(id)
	if err != nil {
		return dto.DeploymentStatsResponse{}, err
	}

	if err := Authorize(principal, record.OwnerID, "access"); err != nil {
		return dto.DeploymentStatsResponse{}, err
	}

	if s.metrics == nil {
		return dto.DeploymentStatsResponse{}, models.NewOrchestratorUnavailable("cluster metrics API is not available", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	podMetrics, err := s.metrics.MetricsV1beta1().PodMetricses(s.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("app=%s", record.Name),
	})
	if err != nil {
		return dto.DeploymentStatsResponse{}, models.NewOrchestratorUnavailable(fmt.Sprintf("failed to read pod metrics for deployment %q", record.Name), err)
	}

	stats := dto.DeploymentStatsResponse{
		Name:     record.Name,
		PodCount: len(podMetrics.Items),
	}
	for _, pod := range podMetrics.Items {
		for _, container := range pod.Containers {
			stats.CPUMilli += container.Usage.Cpu().MilliValue()
			stats.MemoryBytes += container.Usage.Memory().Value()
		}
	}

	return stats, nil
}
