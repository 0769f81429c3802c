package services

import (
	"fmt"
	"log"
	"time"

	"github.com/deploydeck/dto"
	"github.com/deploydeck/models"
	"github.com/deploydeck/utils"

	appsv1 "k8s.io/api/apps/v1"
)

const (
	recordWriteAttempts = 3
	recordWriteDelay    = 200 * time.Millisecond
)

// DeploymentStore is the record repository contract for deployments.
// Implementations return a NotFound-kind error when a record is absent.
type DeploymentStore interface {
	Create(deployment models.Deployment) (models.Deployment, error)
	Save(deployment models.Deployment) error
	FindByID(id string) (models.Deployment, error)
	FindByIDWithApplication(id string) (models.Deployment, error)
	FindAllWithApplication() ([]models.Deployment, error)
	FindByOwnerIDWithApplication(ownerID string) ([]models.Deployment, error)
	NameInUse(name string) (bool, error)
	Delete(id string) error
}

// DeploymentService sequences each lifecycle operation as a short saga over
// the record store and the orchestrator gateway. Operations are
// request-scoped and sequential; no background reconciliation loop runs.
type DeploymentService struct {
	deployments  DeploymentStore
	applications ApplicationStore
	gateway      Gateway
	schema       *utils.SpecSchema
	retryDelay   time.Duration
}

// NewDeploymentService creates a new deployment service instance
func NewDeploymentService(deployments DeploymentStore, applications ApplicationStore, gateway Gateway, schema *utils.SpecSchema) *DeploymentService {
	return &DeploymentService{
		deployments:  deployments,
		applications: applications,
		gateway:      gateway,
		schema:       schema,
		retryDelay:   recordWriteDelay,
	}
}

// CreateDeployment creates a deployment from structured fields:
// validate, allocate a unique name, create cluster-side, persist the
// record, then sync the derived status from the cluster response.
func (s *DeploymentService) CreateDeployment(req dto.CreateDeploymentRequest, principal models.Principal) (dto.DeploymentResponse, error) {
	record := recordFromCreateRequest(req, principal)

	if err := utils.ValidateDeploymentFields(record); err != nil {
		return dto.DeploymentResponse{}, err
	}

	application, err := s.applications.FindByID(req.ApplicationID)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, application.OwnerID, "deploy to"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	name, err := utils.AllocateName(req.Name, s.deployments.NameInUse)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	record.Name = name

	created, err := s.gateway.Create(utils.BuildDeploymentSpec(record, s.gateway.Namespace()))
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	log.Printf("Created deployment %q in cluster", name)

	record, err = s.persistNewRecord(record)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	s.syncAndSaveBestEffort(&record, created)

	record.Application = application
	return dto.NewDeploymentResponseFromModel(record), nil
}

// CreateDeploymentFromDocument creates a deployment from a raw YAML
// definition. The document is parsed and schema-checked before any cluster
// or record-store call. A document-provided name is trusted as-is; name
// collisions surface as a cluster rejection rather than a pre-check.
func (s *DeploymentService) CreateDeploymentFromDocument(req dto.CreateFromYAMLRequest, principal models.Principal) (dto.DeploymentResponse, error) {
	spec, err := s.schema.ParseDocument(req.YAMLDefinition)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	application, err := s.applications.FindByID(req.ApplicationID)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, application.OwnerID, "deploy to"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	if spec.Name == "" {
		name, err := utils.AllocateName(application.Name, s.deployments.NameInUse)
		if err != nil {
			return dto.DeploymentResponse{}, err
		}
		spec.Name = name
	}
	spec.Namespace = s.gateway.Namespace()

	created, err := s.gateway.Create(spec)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	log.Printf("Created deployment %q in cluster from document", created.Name)

	record := recordFromClusterSpec(created, req.ApplicationID, principal.ID)
	record, err = s.persistNewRecord(record)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	s.syncAndSaveBestEffort(&record, created)

	record.Application = application
	return dto.NewDeploymentResponseFromModel(record), nil
}

// GetDeployment retrieves a deployment and refreshes its derived status
// from the cluster. The refresh is pull-based: a failed cluster read
// serves the last synced state instead of failing the request.
func (s *DeploymentService) GetDeployment(id string, principal models.Principal) (dto.DeploymentResponse, error) {
	record, err := s.deployments.FindByIDWithApplication(id)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, record.OwnerID, "access"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	view, err := s.gateway.Get(record.Name)
	if err != nil {
		log.Printf("Status refresh for deployment %q skipped: %v", record.Name, err)
	} else {
		s.syncAndSaveBestEffort(&record, view)
	}

	return dto.NewDeploymentResponseFromModel(record), nil
}

// ListDeployments returns deployments visible to the principal with their
// applications populated. Non-admin listings are filtered to owned records.
func (s *DeploymentService) ListDeployments(principal models.Principal) ([]dto.DeploymentResponse, error) {
	var records []models.Deployment
	var err error

	if principal.IsAdmin() {
		records, err = s.deployments.FindAllWithApplication()
	} else {
		records, err = s.deployments.FindByOwnerIDWithApplication(principal.ID)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DeploymentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewDeploymentResponseFromModel(record))
	}
	return responses, nil
}

// UpdateDeployment applies the mutable fields onto the current cluster
// spec and pushes a full update. The local record is only written after
// the cluster call succeeds, never optimistically.
func (s *DeploymentService) UpdateDeployment(id string, req dto.UpdateDeploymentRequest, principal models.Principal) (dto.DeploymentResponse, error) {
	record, err := s.deployments.FindByIDWithApplication(id)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, record.OwnerID, "update"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	merged := mergeUpdateRequest(record, req)
	if err := utils.ValidateDeploymentFields(merged); err != nil {
		return dto.DeploymentResponse{}, err
	}

	baseline, err := s.gateway.Get(record.Name)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	utils.ApplyDeploymentFields(baseline, merged)

	updated, err := s.gateway.Update(baseline)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	log.Printf("Updated deployment %q in cluster", record.Name)

	application := record.Application
	record = merged
	SyncRecord(&record, updated)
	if err := s.saveRecord(record); err != nil {
		return dto.DeploymentResponse{}, err
	}

	record.Application = application
	return dto.NewDeploymentResponseFromModel(record), nil
}

// ScaleDeployment changes the desired replica count cluster-side, then
// records the new count and synced status.
func (s *DeploymentService) ScaleDeployment(id string, replicas int, principal models.Principal) (dto.DeploymentResponse, error) {
	if replicas < 0 {
		return dto.DeploymentResponse{}, models.NewValidationError("replicas cannot be negative")
	}

	record, err := s.deployments.FindByIDWithApplication(id)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, record.OwnerID, "scale"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	view, err := s.gateway.Scale(record.Name, int32(replicas))
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	log.Printf("Scaled deployment %q to %d replicas", record.Name, replicas)

	record.Replicas = replicas
	SyncRecord(&record, view)
	if err := s.saveRecord(record); err != nil {
		return dto.DeploymentResponse{}, err
	}

	return dto.NewDeploymentResponseFromModel(record), nil
}

// RollbackDeployment rolls the cluster deployment back to an earlier
// revision. A rejected rollback leaves the local record untouched.
func (s *DeploymentService) RollbackDeployment(id string, revision int64, principal models.Principal) (dto.DeploymentResponse, error) {
	record, err := s.deployments.FindByIDWithApplication(id)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}

	if err := Authorize(principal, record.OwnerID, "roll back"); err != nil {
		return dto.DeploymentResponse{}, err
	}

	view, err := s.gateway.Rollback(record.Name, revision)
	if err != nil {
		return dto.DeploymentResponse{}, err
	}
	log.Printf("Rolled back deployment %q to revision %d", record.Name, revision)

	if containers := view.Spec.Template.Spec.Containers; len(containers) > 0 {
		record.Image = containers[0].Image
		record.EnvVars = utils.EnvVarsToMap(containers[0].Env)
	}
	SyncRecord(&record, view)
	if err := s.saveRecord(record); err != nil {
		return dto.DeploymentResponse{}, err
	}

	return dto.NewDeploymentResponseFromModel(record), nil
}

// GetDeploymentHistory returns the rollout revisions of a deployment.
func (s *DeploymentService) GetDeploymentHistory(id string, principal models.Principal) ([]dto.DeploymentRevision, error) {
	record, err := s.deployments.FindByID(id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(principal, record.OwnerID, "access"); err != nil {
		return nil, err
	}

	return s.gateway.History(record.Name)
}

// DeleteDeployment removes the cluster resource, then the record. A
// resource already gone cluster-side is treated as idempotent success so
// the record and the parent link are still cleaned up.
func (s *DeploymentService) DeleteDeployment(id string, principal models.Principal) error {
	record, err := s.deployments.FindByID(id)
	if err != nil {
		return err
	}

	if err := Authorize(principal, record.OwnerID, "delete"); err != nil {
		return err
	}

	if err := s.gateway.Delete(record.Name); err != nil {
		if models.KindOf(err) != models.ErrNotFound {
			return err
		}
		log.Printf("Deployment %q already gone cluster-side, removing record", record.Name)
	} else {
		log.Printf("Deleted deployment %q from cluster", record.Name)
	}

	for attempt := 1; attempt <= recordWriteAttempts; attempt++ {
		if err = s.deployments.Delete(record.ID); err == nil {
			return nil
		}
		log.Printf("Record delete for deployment %q failed (attempt %d/%d): %v", record.Name, attempt, recordWriteAttempts, err)
		time.Sleep(s.retryDelay)
	}

	return models.NewPartialFailure(fmt.Sprintf("deployment %q was deleted cluster-side but its record could not be removed", record.Name), err)
}

// persistNewRecord writes a freshly created record, retrying a bounded
// number of times. A cluster resource without a local record is the worst
// outcome, so exhausted retries escalate to PartialFailure instead of a
// generic error.
func (s *DeploymentService) persistNewRecord(record models.Deployment) (models.Deployment, error) {
	var err error
	for attempt := 1; attempt <= recordWriteAttempts; attempt++ {
		var saved models.Deployment
		if saved, err = s.deployments.Create(record); err == nil {
			return saved, nil
		}
		log.Printf("Record write for deployment %q failed (attempt %d/%d): %v", record.Name, attempt, recordWriteAttempts, err)
		time.Sleep(s.retryDelay)
	}

	return record, models.NewPartialFailure(fmt.Sprintf("deployment %q exists cluster-side but its record could not be persisted", record.Name), err)
}

// saveRecord writes mutable-field changes that follow a confirmed cluster
// mutation, with the same bounded retry and PartialFailure escalation.
func (s *DeploymentService) saveRecord(record models.Deployment) error {
	var err error
	for attempt := 1; attempt <= recordWriteAttempts; attempt++ {
		if err = s.deployments.Save(record); err == nil {
			return nil
		}
		log.Printf("Record save for deployment %q failed (attempt %d/%d): %v", record.Name, attempt, recordWriteAttempts, err)
		time.Sleep(s.retryDelay)
	}

	return models.NewPartialFailure(fmt.Sprintf("deployment %q was mutated cluster-side but its record could not be updated", record.Name), err)
}

// syncAndSaveBestEffort refreshes derived status fields. The derived
// status is a cache; a failed write here is logged and served stale on the
// next read instead of failing the operation.
func (s *DeploymentService) syncAndSaveBestEffort(record *models.Deployment, view *appsv1.Deployment) {
	SyncRecord(record, view)
	if err := s.deployments.Save(*record); err != nil {
		log.Printf("Status sync write for deployment %q failed: %v", record.Name, err)
	}
}

func recordFromCreateRequest(req dto.CreateDeploymentRequest, principal models.Principal) models.Deployment {
	replicas := 1
	if req.Replicas != nil {
		replicas = *req.Replicas
	}

	strategy := models.DeploymentStrategy(req.Strategy)
	if strategy == "" {
		strategy = models.StrategyRollingUpdate
	}

	return models.Deployment{
		ApplicationID:  req.ApplicationID,
		Image:          req.Image,
		OwnerID:        principal.ID,
		Replicas:       replicas,
		Strategy:       strategy,
		MaxUnavailable: req.MaxUnavailable,
		MaxSurge:       req.MaxSurge,
		EnvVars:        req.EnvVars,
		Labels:         req.Labels,
		Paused:         req.Paused,
		DerivedStatus:  models.StatusPending,
	}
}

func recordFromClusterSpec(spec *appsv1.Deployment, applicationID, ownerID string) models.Deployment {
	record := models.Deployment{
		ApplicationID: applicationID,
		Name:          spec.Name,
		OwnerID:       ownerID,
		Replicas:      1,
		Strategy:      models.StrategyRollingUpdate,
		Paused:        spec.Spec.Paused,
		DerivedStatus: models.StatusPending,
	}

	if spec.Spec.Replicas != nil {
		record.Replicas = int(*spec.Spec.Replicas)
	}

	if spec.Spec.Strategy.Type == appsv1.RecreateDeploymentStrategyType {
		record.Strategy = models.StrategyRecreate
	} else if rolling := spec.Spec.Strategy.RollingUpdate; rolling != nil {
		if rolling.MaxUnavailable != nil {
			record.MaxUnavailable = rolling.MaxUnavailable.String()
		}
		if rolling.MaxSurge != nil {
			record.MaxSurge = rolling.MaxSurge.String()
		}
	}

	if containers := spec.Spec.Template.Spec.Containers; len(containers) > 0 {
		record.Image = containers[0].Image
		record.EnvVars = utils.EnvVarsToMap(containers[0].Env)
	}

	if len(spec.Labels) > 0 {
		record.Labels = models.Labels(spec.Labels)
	}

	return record
}

func mergeUpdateRequest(record models.Deployment, req dto.UpdateDeploymentRequest) models.Deployment {
	merged := record

	merged.Image = req.Image
	if req.Replicas != nil {
		merged.Replicas = *req.Replicas
	}
	if req.Paused != nil {
		merged.Paused = *req.Paused
	}
	if req.EnvVars != nil {
		merged.EnvVars = req.EnvVars
	}
	if req.Labels != nil {
		merged.Labels = req.Labels
	}
	if req.Strategy != "" {
		merged.Strategy = models.DeploymentStrategy(req.Strategy)
		merged.MaxUnavailable = req.MaxUnavailable
		merged.MaxSurge = req.MaxSurge
	} else {
		if req.MaxUnavailable != "" {
			merged.MaxUnavailable = req.MaxUnavailable
		}
		if req.MaxSurge != "" {
			merged.MaxSurge = req.MaxSurge
		}
	}

	return merged
}
