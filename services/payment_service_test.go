package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub-server/models"
)

// fakeGateway stands in for Razorpay in tests.
type fakeGateway struct {
	orderID      string
	createErr    error
	verifyResult bool

	createdAmount   int64
	createdCurrency string
	verifyCalls     int
}

func (f *fakeGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	f.createdAmount = amount
	f.createdCurrency = currency
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.orderID, nil
}

func (f *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	f.verifyCalls++
	return f.verifyResult
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	gateway := &fakeGateway{orderID: "order_test123", verifyResult: true}
	payments := NewPaymentService(db, gateway, nil, "rzp_test_key", "INR")

	order, err := payments.CreateOrder(fx.customer.ID, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, "order_test123", order.OrderID)
	assert.Equal(t, int64(49900), order.Amount) // 499.00 in paise
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.KeyID)
	assert.Equal(t, int64(49900), gateway.createdAmount)

	// An audit transaction is persisted alongside the order
	var tx models.PaymentTransaction
	require.NoError(t, db.Where("razorpay_order_id = ?", order.OrderID).First(&tx).Error)
	assert.Equal(t, booking.ID, tx.BookingID)
	assert.Equal(t, models.TransactionStatusCreated, tx.Status)
}

func TestCreateOrderGuards(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	gateway := &fakeGateway{orderID: "order_x"}
	payments := NewPaymentService(db, gateway, nil, "key", "INR")

	// Only the booking owner may start a payment
	booking := createTestBooking(t, bookings, fx)
	_, err := payments.CreateOrder(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Already-paid booking cannot get a new order
	markPaid(t, db, booking.ID)
	_, err = payments.CreateOrder(fx.customer.ID, booking.ID)
	assert.ErrorIs(t, err, ErrPaymentAlreadySettled)

	// Closed booking cannot get an order
	booking = createTestBooking(t, bookings, fx)
	_, err = bookings.Cancel(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	_, err = payments.CreateOrder(fx.customer.ID, booking.ID)
	assert.ErrorIs(t, err, ErrBookingClosed)

	_, err = payments.CreateOrder(fx.customer.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPaymentSuccess(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	gateway := &fakeGateway{orderID: "order_ok", verifyResult: true}
	payments := NewPaymentService(db, gateway, nil, "key", "INR")

	order, err := payments.CreateOrder(fx.customer.ID, booking.ID)
	require.NoError(t, err)

	confirmed, err := payments.ConfirmPayment(models.PaymentVerifyRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig",
		BookingID:         booking.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	require.NotNil(t, confirmed.PaymentMethod)
	assert.Equal(t, models.PaymentMethodGateway, *confirmed.PaymentMethod)
	// Lifecycle status is untouched by payment settlement
	assert.Equal(t, models.BookingStatusPending, confirmed.Status)

	var tx models.PaymentTransaction
	require.NoError(t, db.Where("razorpay_order_id = ?", order.OrderID).First(&tx).Error)
	assert.Equal(t, models.TransactionStatusPaid, tx.Status)
	assert.Equal(t, "pay_abc", tx.RazorpayPaymentID)
	assert.NotNil(t, tx.CapturedAt)
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	gateway := &fakeGateway{orderID: "order_bad", verifyResult: false}
	payments := NewPaymentService(db, gateway, nil, "key", "INR")

	order, err := payments.CreateOrder(fx.customer.ID, booking.ID)
	require.NoError(t, err)

	_, err = payments.ConfirmPayment(models.PaymentVerifyRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "forged",
		BookingID:         booking.ID,
	})
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)

	// Payment stays pending so the user can retry
	var fresh models.Booking
	require.NoError(t, db.First(&fresh, booking.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, fresh.PaymentStatus)

	// The failure reason lands on the audit transaction
	var tx models.PaymentTransaction
	require.NoError(t, db.Where("razorpay_order_id = ?", order.OrderID).First(&tx).Error)
	require.NotNil(t, tx.ErrorDescription)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	gateway := &fakeGateway{orderID: "order_x", verifyResult: true}
	payments := NewPaymentService(db, gateway, nil, "key", "INR")

	_, err := payments.ConfirmPayment(models.PaymentVerifyRequest{
		RazorpayOrderID:   "order_never_created",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig",
		BookingID:         booking.ID,
	})
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	gateway := &fakeGateway{orderID: "order_dup", verifyResult: true}
	payments := NewPaymentService(db, gateway, nil, "key", "INR")

	order, err := payments.CreateOrder(fx.customer.ID, booking.ID)
	require.NoError(t, err)

	req := models.PaymentVerifyRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig",
		BookingID:         booking.ID,
	}

	_, err = payments.ConfirmPayment(req)
	require.NoError(t, err)
	verifiesAfterFirst := gateway.verifyCalls

	// A duplicate callback is a no-op answered with the current state
	again, err := payments.ConfirmPayment(req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, again.PaymentStatus)
	assert.Equal(t, verifiesAfterFirst, gateway.verifyCalls, "duplicate confirmation must not re-verify")
}

func TestRecordCashPayment(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	bookings := NewBookingService(db, nil)
	booking := createTestBooking(t, bookings, fx)

	payments := NewPaymentService(db, &fakeGateway{}, nil, "key", "INR")

	// Cash can only be recorded once the worker has accepted
	_, err := payments.RecordCashPayment(fx.customer.ID, booking.ID)
	assert.ErrorIs(t, err, ErrCashPaymentNotAccepted)

	_, err = bookings.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)

	// Only the owner may record it
	_, err = payments.RecordCashPayment(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	paid, err := payments.RecordCashPayment(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, models.PaymentMethodCash, *paid.PaymentMethod)

	// Idempotent on a settled payment
	again, err := payments.RecordCashPayment(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, again.PaymentStatus)

	// And the booking can now be completed
	completed, err := bookings.Complete(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
}
