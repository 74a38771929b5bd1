package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
)

// Payment methods recorded on a booking once payment settles.
const (
	PaymentMethodGateway = "gateway"
	PaymentMethodCash    = "cash"
)

// validTransitions defines the booking lifecycle state machine.
// pending -> accepted | rejected | cancelled
// accepted -> completed | cancelled
// rejected, completed and cancelled are terminal.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusAccepted:  {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusRejected:  {},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further status transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsTerminal returns true once a payment outcome has been recorded.
// Both paid and failed are final for the payment axis.
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusPaid || p == PaymentStatusFailed
}

type Booking struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	UserID    uint          `json:"user_id" gorm:"not null;index"`
	ServiceID uint          `json:"service_id" gorm:"not null"`
	WorkerID  uint          `json:"worker_id" gorm:"not null;index"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';check:status IN ('pending','accepted','rejected','completed','cancelled')"`

	ScheduledDate string  `json:"scheduled_date" gorm:"size:20;not null"`
	ScheduledTime string  `json:"scheduled_time" gorm:"size:20;not null"`
	Address       string  `json:"address" gorm:"size:500;not null"`
	Notes         *string `json:"notes" gorm:"size:1000"`

	TotalAmount   float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';check:payment_status IN ('pending','paid','failed')"`
	PaymentMethod *string       `json:"payment_method" gorm:"size:20"`

	WorkerPayoutStatus PayoutStatus `json:"worker_payout_status" gorm:"type:varchar(20);default:'pending';check:worker_payout_status IN ('pending','completed')"`
	PayoutAt           *time.Time   `json:"payout_at"`
	Tips               float64      `json:"tips" gorm:"type:decimal(10,2);default:0"`
	Bonus              float64      `json:"bonus" gorm:"type:decimal(10,2);default:0"`

	Rating     *int `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	IsFavorite bool `json:"is_favorite" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Worker  User    `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// WorkerEarnings is the amount owed to the worker once the booking settles.
func (b *Booking) WorkerEarnings() float64 {
	return b.TotalAmount + b.Tips + b.Bonus
}

// BookingCreate represents the request structure for creating a booking
type BookingCreate struct {
	ServiceID     uint    `json:"service_id" binding:"required"`
	WorkerID      uint    `json:"worker_id" binding:"required"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	ScheduledTime string  `json:"scheduled_time" binding:"required"`
	Address       string  `json:"address" binding:"required,max=500"`
	Notes         *string `json:"notes" binding:"omitempty,max=1000"`
}

// BookingAdjustment represents a payout-adjacent tips/bonus adjustment
type BookingAdjustment struct {
	Tips  *float64 `json:"tips" binding:"omitempty,gte=0"`
	Bonus *float64 `json:"bonus" binding:"omitempty,gte=0"`
}
