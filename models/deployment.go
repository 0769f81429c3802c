package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// EnvVars custom type for JSON storage
type EnvVars map[string]string

func (e EnvVars) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *EnvVars) Scan(value interface{}) error {
	if value == nil {
		*e = make(map[string]string)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, e)
}

// Labels custom type for JSON storage
type Labels map[string]string

func (l Labels) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Labels) Scan(value interface{}) error {
	if value == nil {
		*l = make(map[string]string)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, l)
}

// DeploymentStrategy represents the rollout strategy of a deployment
type DeploymentStrategy string

const (
	StrategyRollingUpdate DeploymentStrategy = "RollingUpdate"
	StrategyRecreate      DeploymentStrategy = "Recreate"
)

// DerivedStatus classifies deployment health from the last cluster
// observation. It is a cache, never authoritative.
type DerivedStatus string

const (
	StatusPending        DerivedStatus = "Pending"
	StatusAvailable      DerivedStatus = "Available"
	StatusNotAvailable   DerivedStatus = "NotAvailable"
	StatusNotProgressing DerivedStatus = "NotProgressing"
)

// Deployment represents a deployment record mirrored cluster-side.
// Name is globally unique among live deployments. Owner is immutable
// after creation.
type Deployment struct {
	ID            string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ApplicationID string             `json:"applicationId" gorm:"type:uuid;not null;index"`
	Name          string             `json:"name" gorm:"uniqueIndex;not null"`
	Image         string             `json:"image" gorm:"not null"`
	OwnerID       string             `json:"ownerId" gorm:"type:uuid;not null;index"`
	Replicas      int                `json:"replicas" gorm:"default:1"`
	Strategy      DeploymentStrategy `json:"strategy" gorm:"type:varchar(20);default:'RollingUpdate'"`
	MaxUnavailable string            `json:"maxUnavailable" gorm:"default:null"`
	MaxSurge       string            `json:"maxSurge" gorm:"default:null"`
	EnvVars       EnvVars            `json:"envVars" gorm:"type:jsonb;default:'{}'"`
	Labels        Labels             `json:"labels" gorm:"type:jsonb;default:'{}'"`
	Paused        bool               `json:"paused" gorm:"default:false"`

	// Derived status fields, projected from the last cluster observation
	AvailableReplicas  int           `json:"availableReplicas" gorm:"default:0"`
	ObservedGeneration int64         `json:"observedGeneration" gorm:"default:0"`
	DerivedStatus      DerivedStatus `json:"derivedStatus" gorm:"type:varchar(20);default:'Pending'"`
	LastSyncedAt       *time.Time    `json:"lastSyncedAt" gorm:"default:null"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Application Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	Owner       User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
