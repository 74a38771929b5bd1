package models

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a one-time rating left by a customer for a completed booking
type Review struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	BookingID uint   `json:"booking_id" gorm:"uniqueIndex;not null"`
	UserID    uint   `json:"user_id" gorm:"not null"`
	WorkerID  uint   `json:"worker_id" gorm:"not null;index"`
	Rating    int    `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment   string `json:"comment" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Worker  User    `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ReviewCreate represents the request structure for creating a review
type ReviewCreate struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"omitempty,max=2000"`
}
