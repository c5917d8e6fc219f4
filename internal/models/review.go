package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID       string    `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_project_reviewer"`
	ReviewerID      string    `json:"reviewer_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_project_reviewer"`
	TargetUserID    string    `json:"target_user_id" gorm:"type:uuid;not null;index"`
	OverallRating   int       `json:"overall_rating" gorm:"not null;check:overall_rating >= 1 AND overall_rating <= 5"`
	Quality         int       `json:"quality" gorm:"not null;check:quality >= 1 AND quality <= 5"`
	Communication   int       `json:"communication" gorm:"not null;check:communication >= 1 AND communication <= 5"`
	Timeliness      int       `json:"timeliness" gorm:"not null;check:timeliness >= 1 AND timeliness <= 5"`
	Professionalism int       `json:"professionalism" gorm:"not null;check:professionalism >= 1 AND professionalism <= 5"`
	Comment         string    `json:"comment" gorm:"type:text"`
	IsFlagged       bool      `json:"is_flagged" gorm:"default:false"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Reviewer *User    `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Target   *User    `json:"target,omitempty" gorm:"foreignKey:TargetUserID"`
	Project  *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
