package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"servicehub-server/models"
)

// GatewayClient abstracts the payment gateway so the coordinator can be
// tested without real Razorpay credentials.
type GatewayClient interface {
	// CreateOrder registers an order for the given amount (in the smallest
	// currency unit) and returns the gateway order ID.
	CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error)

	// VerifyPaymentSignature checks the signed proof returned by checkout.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// razorpayGateway implements GatewayClient with the Razorpay SDK.
type razorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

// NewRazorpayGateway creates a gateway client backed by the Razorpay SDK.
func NewRazorpayGateway(keyID, keySecret string) GatewayClient {
	return &razorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

func (g *razorpayGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order response missing order id")
	}
	return orderID, nil
}

// VerifyPaymentSignature checks the checkout proof: an HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the API secret, hex encoded.
func (g *razorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// PaymentService tracks the payment sub-state of a booking independently of
// its lifecycle status. paid and failed are terminal: confirmations arriving
// after either outcome are answered with the current state and produce no
// second side effect, which makes duplicate gateway callbacks harmless.
type PaymentService struct {
	db       *gorm.DB
	gateway  GatewayClient
	notifier *NotificationService
	keyID    string
	currency string
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, gateway GatewayClient, notifier *NotificationService, keyID, currency string) *PaymentService {
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		notifier: notifier,
		keyID:    keyID,
		currency: currency,
	}
}

// CreateOrder registers a gateway order for the booking's total amount and
// hands back the opaque order handle. Booking state is untouched.
func (ps *PaymentService) CreateOrder(userID, bookingID uint) (*models.PaymentOrder, error) {
	booking, err := ps.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrUnauthorized
	}
	if booking.PaymentStatus.IsTerminal() {
		return nil, ErrPaymentAlreadySettled
	}
	if booking.Status.IsTerminal() {
		return nil, ErrBookingClosed
	}

	amount := int64(math.Round(booking.TotalAmount * 100))
	receipt := uuid.NewString()

	orderID, err := ps.gateway.CreateOrder(amount, ps.currency, receipt, map[string]interface{}{
		"booking_id": fmt.Sprintf("%d", bookingID),
	})
	if err != nil {
		return nil, err
	}

	tx := models.PaymentTransaction{
		BookingID:       bookingID,
		RazorpayOrderID: orderID,
		Amount:          booking.TotalAmount,
		Currency:        ps.currency,
		Status:          models.TransactionStatusCreated,
	}
	if err := ps.db.Create(&tx).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Payment order %s created for booking %d (%d %s)", orderID, bookingID, amount, ps.currency)

	return &models.PaymentOrder{
		OrderID:  orderID,
		Amount:   amount,
		Currency: ps.currency,
		KeyID:    ps.keyID,
	}, nil
}

// ConfirmPayment verifies the gateway proof and, on success, moves the
// booking's payment status from pending to paid. If the payment status is
// already terminal the call is a no-op returning the current state: gateway
// callbacks may be delivered more than once and must never double-credit.
// On verification failure payment stays pending so the user can retry.
func (ps *PaymentService) ConfirmPayment(req models.PaymentVerifyRequest) (*models.Booking, error) {
	booking, err := ps.loadBooking(req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus.IsTerminal() {
		log.Printf("⚠️ Payment for booking %d already %s - ignoring duplicate confirmation", booking.ID, booking.PaymentStatus)
		return booking, nil
	}

	var tx models.PaymentTransaction
	if err := ps.db.Where("razorpay_order_id = ? AND booking_id = ?", req.RazorpayOrderID, req.BookingID).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentVerificationFailed
		}
		return nil, err
	}

	if !ps.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		desc := "signature verification failed"
		ps.db.Model(&tx).Updates(map[string]interface{}{
			"error_description": &desc,
		})
		return nil, ErrPaymentVerificationFailed
	}

	if err := ps.markPaid(booking, models.PaymentMethodGateway); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := ps.db.Model(&tx).Updates(map[string]interface{}{
		"razorpay_payment_id": req.RazorpayPaymentID,
		"status":              models.TransactionStatusPaid,
		"captured_at":         &now,
	}).Error; err != nil {
		log.Printf("⚠️ Failed to update payment transaction %s: %v", tx.RazorpayOrderID, err)
	}

	return booking, nil
}

// RecordCashPayment settles a booking as paid on service, bypassing the
// gateway. Only the owner may record it, and only while the booking is
// accepted. Idempotent on terminal payment states.
func (ps *PaymentService) RecordCashPayment(userID, bookingID uint) (*models.Booking, error) {
	booking, err := ps.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrUnauthorized
	}
	if booking.PaymentStatus.IsTerminal() {
		return booking, nil
	}
	if booking.Status != models.BookingStatusAccepted {
		return nil, ErrCashPaymentNotAccepted
	}

	if err := ps.markPaid(booking, models.PaymentMethodCash); err != nil {
		return nil, err
	}
	return booking, nil
}

// markPaid flips payment status pending -> paid with a conditional update
// and dispatches the payment notification to the worker exactly once.
func (ps *PaymentService) markPaid(booking *models.Booking, method string) error {
	res := ps.db.Model(&models.Booking{}).
		Where("id = ? AND payment_status = ?", booking.ID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"payment_method": method,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent confirmation won; treat as already settled.
		if err := ps.db.First(booking, booking.ID).Error; err != nil {
			return err
		}
		return nil
	}

	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentMethod = &method

	if ps.notifier != nil {
		workerID, bookingID := booking.WorkerID, booking.ID
		go func() {
			if err := ps.notifier.DispatchBookingEvent(workerID, bookingID, models.NotificationPaymentReceived); err != nil {
				log.Printf("⚠️ Failed to dispatch payment notification for booking %d: %v", bookingID, err)
			}
		}()
	}

	return nil
}

func (ps *PaymentService) loadBooking(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := ps.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}
