package models

import "time"

// Reputation is the precomputed summary attached to a user profile.
// Rows are rewritten by the reputation service, never by clients.
type Reputation struct {
	ID                    uint      `json:"-" gorm:"primaryKey"`
	UserID                string    `json:"-" gorm:"type:uuid;uniqueIndex;not null"`
	Score                 int       `json:"score" gorm:"default:0"`
	CompletedProjectCount int       `json:"completed_project_count" gorm:"default:0"`
	AverageRating         float64   `json:"average_rating" gorm:"default:0"`
	LastUpdated           time.Time `json:"last_updated"`
}
