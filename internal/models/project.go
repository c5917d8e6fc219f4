package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID           string        `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string        `json:"title" gorm:"not null"`
	Description  string        `json:"description"`
	Budget       float64       `json:"budget" gorm:"default:0"`
	ClientID     string        `json:"client_id" gorm:"type:uuid;not null;index"`
	FreelancerID *string       `json:"freelancer_id,omitempty" gorm:"type:uuid;index"`
	Status       ProjectStatus `json:"status" gorm:"type:varchar(20);default:open;index"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Relations
	Client     *User `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Freelancer *User `json:"freelancer,omitempty" gorm:"foreignKey:FreelancerID"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasParty reports whether userID is the client or the assigned freelancer.
func (p *Project) HasParty(userID string) bool {
	if p.ClientID == userID {
		return true
	}
	return p.FreelancerID != nil && *p.FreelancerID == userID
}

type CreateProjectRequest struct {
	Title        string  `json:"title" binding:"required,min=3,max=200"`
	Description  string  `json:"description" binding:"max=5000"`
	Budget       float64 `json:"budget" binding:"gte=0"`
	FreelancerID *string `json:"freelancer_id,omitempty"`
}
