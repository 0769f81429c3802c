package services

import (
	"time"

	"github.com/deploydeck/models"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

// ClassifyDeploymentStatus reduces a cluster observation to exactly one
// derived status. Precedence: no observed generation yet means the rollout
// has not been picked up (Pending); full availability wins next; a failed
// progress deadline beats plain unavailability.
func ClassifyDeploymentStatus(observedGeneration int64, availableReplicas, desiredReplicas int32, progressing *bool) models.DerivedStatus {
	if observedGeneration == 0 {
		return models.StatusPending
	}
	if availableReplicas >= desiredReplicas {
		return models.StatusAvailable
	}
	if progressing != nil && !*progressing {
		return models.StatusNotProgressing
	}
	return models.StatusNotAvailable
}

// SyncRecord projects the orchestrator-observed state of a deployment onto
// the record's derived status fields. The record store value is allowed to
// be stale between refreshes; this is a cache, not a transaction.
func SyncRecord(record *models.Deployment, view *appsv1.Deployment) {
	desired := int32(record.Replicas)
	if view.Spec.Replicas != nil {
		desired = *view.Spec.Replicas
		record.Replicas = int(desired)
	}

	record.AvailableReplicas = int(view.Status.AvailableReplicas)
	record.ObservedGeneration = view.Status.ObservedGeneration
	record.Paused = view.Spec.Paused
	record.DerivedStatus = ClassifyDeploymentStatus(
		view.Status.ObservedGeneration,
		view.Status.AvailableReplicas,
		desired,
		progressingCondition(view),
	)

	now := time.Now()
	record.LastSyncedAt = &now
}

// progressingCondition extracts the Progressing condition as a tri-state:
// nil when the orchestrator has not reported it yet.
func progressingCondition(view *appsv1.Deployment) *bool {
	for _, condition := range view.Status.Conditions {
		if condition.Type == appsv1.DeploymentProgressing {
			value := condition.Status == corev1.ConditionTrue
			return &value
		}
	}
	return nil
}
