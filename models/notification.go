package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification event types dispatched by the booking lifecycle.
const (
	NotificationBookingCreated   = "booking_created"
	NotificationBookingAccepted  = "booking_accepted"
	NotificationBookingRejected  = "booking_rejected"
	NotificationBookingCompleted = "booking_completed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationPaymentReceived  = "payment_received"
	NotificationPayoutCompleted  = "payout_completed"
)

type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	BookingID uint           `json:"booking_id" gorm:"index"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null"`
	Data      string         `json:"data" gorm:"type:text"` // JSON payload
	Read      bool           `json:"read" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

type PushToken struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null"`
	Token     string         `json:"token" gorm:"not null;unique"`
	Platform  string         `json:"platform" gorm:"not null"` // ios, android
	DeviceID  string         `json:"device_id"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}
