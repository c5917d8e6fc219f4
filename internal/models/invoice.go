package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invoice struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID    string    `json:"project_id" gorm:"type:uuid;not null;index"`
	ClientID     string    `json:"client_id" gorm:"type:uuid;not null;index"`
	FreelancerID string    `json:"freelancer_id" gorm:"type:uuid;not null;index"`
	Amount       float64   `json:"amount" gorm:"not null"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Link is a directed relation between two users (follow, referral, ...).
// Outgoing links have FromUserID = user, incoming links ToUserID = user.
type Link struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID string    `json:"from_user_id" gorm:"type:uuid;not null;index"`
	ToUserID   string    `json:"to_user_id" gorm:"type:uuid;not null;index"`
	Kind       string    `json:"kind" gorm:"type:varchar(30);default:follow"`
	CreatedAt  time.Time `json:"created_at"`
}
