package models

import (
	"time"
)

// Payment transaction states mirror the gateway order lifecycle.
const (
	TransactionStatusCreated = "created"
	TransactionStatusPaid    = "paid"
	TransactionStatusFailed  = "failed"
)

// PaymentTransaction is the audit record for one gateway order.
// A booking may accumulate several transactions when the user retries
// a failed or abandoned payment; at most one of them ends up paid.
type PaymentTransaction struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	BookingID         uint       `json:"booking_id" gorm:"not null;index"`
	RazorpayOrderID   string     `json:"razorpay_order_id" gorm:"size:100;uniqueIndex;not null"`
	RazorpayPaymentID string     `json:"razorpay_payment_id" gorm:"size:100"`
	Amount            float64    `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency          string     `json:"currency" gorm:"size:10;not null"`
	Status            string     `json:"status" gorm:"size:20;not null;default:'created'"`
	ErrorDescription  *string    `json:"error_description" gorm:"size:500"`
	CapturedAt        *time.Time `json:"captured_at"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the PaymentTransaction model
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// PaymentOrder is the opaque order handle handed back to the client
// so it can open the gateway checkout.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreateOrderRequest represents the request body for creating a gateway order
type CreateOrderRequest struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

// PaymentVerifyRequest carries the gateway proof returned by checkout
type PaymentVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	BookingID         uint   `json:"booking_id" binding:"required"`
}

// CashPaymentRequest marks a booking as paid on service
type CashPaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash"`
}
