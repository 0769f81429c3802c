package models

import (
	"time"

	"gorm.io/gorm"
)

// Application represents an application record that indexes its deployments.
// It does not own deployment lifecycle; it is a weak back-reference.
type Application struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"default:null"`
	OwnerID     string         `json:"ownerId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Owner       User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Deployments []Deployment `json:"deployments,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}
