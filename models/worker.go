package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkerProfile represents a worker's professional profile
type WorkerProfile struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	CategoryID  uint            `json:"category_id" gorm:"not null"`
	Category    ServiceCategory `json:"category" gorm:"foreignKey:CategoryID"`
	City        string          `json:"city" gorm:"type:varchar(100)"`
	Experience  string          `json:"experience" gorm:"type:text"`
	Skills      string          `json:"skills" gorm:"type:text"`
	HourlyRate  float64         `json:"hourly_rate" gorm:"type:decimal(10,2);default:0"`
	IsAvailable bool            `json:"is_available" gorm:"default:true"`

	// Aggregates maintained when reviews land and bookings settle
	CompletedJobs int     `json:"completed_jobs" gorm:"default:0"`
	Rating        float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalReviews  int     `json:"total_reviews" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the WorkerProfile model
func (WorkerProfile) TableName() string {
	return "worker_profiles"
}

// WorkerProfileRequest represents the request structure for creating/updating a worker profile
type WorkerProfileRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	City        string  `json:"city"`
	Experience  string  `json:"experience"`
	Skills      string  `json:"skills"`
	HourlyRate  float64 `json:"hourly_rate" binding:"omitempty,gte=0"`
	IsAvailable *bool   `json:"is_available"`
}
