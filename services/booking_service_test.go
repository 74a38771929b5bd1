package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"servicehub-server/database"
	"servicehub-server/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	return db
}

type fixtures struct {
	customer models.User
	worker   models.User
	service  models.Service
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	customer := models.User{
		FullName:     "Test Customer",
		PhoneNumber:  "+14155550100",
		PasswordHash: "x",
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&customer).Error)

	worker := models.User{
		FullName:     "Test Worker",
		PhoneNumber:  "+14155550101",
		PasswordHash: "x",
		Role:         models.RoleWorker,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&worker).Error)

	category := models.ServiceCategory{Name: "Plumbing", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	service := models.Service{
		CategoryID: category.ID,
		Name:       "Leak Repair",
		Price:      499,
		Duration:   60,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&service).Error)

	return fixtures{customer: customer, worker: worker, service: service}
}

func createTestBooking(t *testing.T, svc *BookingService, fx fixtures) *models.Booking {
	t.Helper()

	booking, err := svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID:     fx.service.ID,
		WorkerID:      fx.worker.ID,
		ScheduledDate: "2025-03-01",
		ScheduledTime: "10:00",
		Address:       "42 Test Street",
	})
	require.NoError(t, err)
	return booking
}

func markPaid(t *testing.T, db *gorm.DB, bookingID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", models.PaymentStatusPaid).Error)
}

// flipAfterRead runs flip once, right after the next read of the bookings
// table, simulating a concurrent writer committing between the service's
// read and its conditional update.
func flipAfterRead(t *testing.T, db *gorm.DB, name string, flip func()) {
	t.Helper()

	fired := false
	err := db.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "bookings" {
			return
		}
		fired = true
		flip()
	})
	require.NoError(t, err)
}

func TestCreateBookingDefaults(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)

	notes := "ring the bell twice"
	booking, err := svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID:     fx.service.ID,
		WorkerID:      fx.worker.ID,
		ScheduledDate: "2025-03-01",
		ScheduledTime: "10:00",
		Address:       "42 Test Street",
		Notes:         &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Equal(t, models.PayoutStatusPending, booking.WorkerPayoutStatus)
	assert.Equal(t, fx.service.Price, booking.TotalAmount)
	assert.False(t, booking.IsFavorite)
	assert.Nil(t, booking.Rating)

	// Round-trip: scheduling fields come back exactly as submitted
	fetched, err := svc.GetByID(fx.customer.ID, models.RoleCustomer, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", fetched.ScheduledDate)
	assert.Equal(t, "10:00", fetched.ScheduledTime)
	assert.Equal(t, "42 Test Street", fetched.Address)
	require.NotNil(t, fetched.Notes)
	assert.Equal(t, notes, *fetched.Notes)
}

func TestCreateBookingValidation(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)

	// Unknown worker
	_, err := svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID: fx.service.ID, WorkerID: 9999,
		ScheduledDate: "2025-03-01", ScheduledTime: "10:00", Address: "x",
	})
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	// A customer cannot be booked as the worker
	_, err = svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID: fx.service.ID, WorkerID: fx.customer.ID,
		ScheduledDate: "2025-03-01", ScheduledTime: "10:00", Address: "x",
	})
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	// Unknown service
	_, err = svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID: 9999, WorkerID: fx.worker.ID,
		ScheduledDate: "2025-03-01", ScheduledTime: "10:00", Address: "x",
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	// Inactive service
	require.NoError(t, db.Model(&fx.service).Update("is_active", false).Error)
	_, err = svc.Create(fx.customer.ID, models.BookingCreate{
		ServiceID: fx.service.ID, WorkerID: fx.worker.ID,
		ScheduledDate: "2025-03-01", ScheduledTime: "10:00", Address: "x",
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestGetByIDVisibility(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	// Owner and assigned worker can read it
	_, err := svc.GetByID(fx.customer.ID, models.RoleCustomer, booking.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(fx.worker.ID, models.RoleWorker, booking.ID)
	assert.NoError(t, err)

	// An unrelated user cannot
	_, err = svc.GetByID(fx.customer.ID+1000, models.RoleCustomer, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// An admin can
	_, err = svc.GetByID(fx.customer.ID+1000, models.RoleAdmin, booking.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(fx.customer.ID, models.RoleCustomer, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptBooking(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	accepted, err := svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, accepted.Status)

	// Accepting twice is an invalid transition reported from the live state
	_, err = svc.Accept(fx.worker.ID, booking.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.BookingStatusAccepted, transitionErr.From)
	assert.Equal(t, models.BookingStatusAccepted, transitionErr.To)
}

func TestAcceptBookingWrongWorker(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	otherWorker := models.User{
		FullName: "Other Worker", PhoneNumber: "+14155550199",
		PasswordHash: "x", Role: models.RoleWorker, IsActive: true,
	}
	require.NoError(t, db.Create(&otherWorker).Error)

	_, err := svc.Accept(otherWorker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The owner cannot accept their own booking either
	_, err = svc.Accept(fx.customer.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRejectBookingIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	rejected, err := svc.Reject(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, rejected.Status)

	_, err = svc.Accept(fx.worker.ID, booking.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.BookingStatusRejected, transitionErr.From)

	_, err = svc.Cancel(fx.customer.ID, booking.ID)
	require.True(t, errors.As(err, &transitionErr))
}

func TestCompleteRequiresPayment(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	_, err := svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)

	// Unpaid booking cannot be completed
	_, err = svc.Complete(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	markPaid(t, db, booking.ID)

	completed, err := svc.Complete(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
}

func TestCompleteFromPendingFails(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	markPaid(t, db, booking.ID)

	// Paid but never accepted: pending -> completed is not a legal move
	_, err := svc.Complete(fx.worker.ID, booking.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.BookingStatusPending, transitionErr.From)
	assert.Equal(t, models.BookingStatusCompleted, transitionErr.To)
}

func TestCancelBooking(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)

	// Pending booking can be cancelled by its owner
	booking := createTestBooking(t, svc, fx)
	cancelled, err := svc.Cancel(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// Accepted booking can be cancelled too
	booking = createTestBooking(t, svc, fx)
	_, err = svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(fx.customer.ID, booking.ID)
	assert.NoError(t, err)

	// The worker cannot cancel on the customer's behalf
	booking = createTestBooking(t, svc, fx)
	_, err = svc.Cancel(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelCompletedBookingFails(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	_, err := svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	markPaid(t, db, booking.ID)
	_, err = svc.Complete(fx.worker.ID, booking.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(fx.customer.ID, booking.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.BookingStatusCompleted, transitionErr.From)
	assert.Equal(t, models.BookingStatusCancelled, transitionErr.To)
}

func TestRateBooking(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	// Only completed bookings can be rated
	_, err := svc.Rate(fx.customer.ID, booking.ID, 5)
	assert.ErrorIs(t, err, ErrBookingNotCompleted)

	_, err = svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	markPaid(t, db, booking.ID)
	_, err = svc.Complete(fx.worker.ID, booking.ID)
	require.NoError(t, err)

	// Only the owner can rate
	_, err = svc.Rate(fx.worker.ID, booking.ID, 5)
	assert.ErrorIs(t, err, ErrUnauthorized)

	rated, err := svc.Rate(fx.customer.ID, booking.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4, *rated.Rating)

	// Rating is one-shot
	_, err = svc.Rate(fx.customer.ID, booking.ID, 5)
	assert.ErrorIs(t, err, ErrRatingAlreadySet)
}

func TestToggleFavorite(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	toggled, err := svc.ToggleFavorite(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	toggled, err = svc.ToggleFavorite(fx.customer.ID, booking.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsFavorite)

	_, err = svc.ToggleFavorite(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdjustPayout(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	tips, bonus := 50.0, 25.0
	adjusted, err := svc.AdjustPayout(booking.ID, models.BookingAdjustment{Tips: &tips, Bonus: &bonus})
	require.NoError(t, err)
	assert.Equal(t, 50.0, adjusted.Tips)
	assert.Equal(t, 25.0, adjusted.Bonus)
	assert.Equal(t, booking.TotalAmount+75, adjusted.WorkerEarnings())

	// Once the payout settles, adjustments are rejected
	require.NoError(t, db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("worker_payout_status", models.PayoutStatusCompleted).Error)

	_, err = svc.AdjustPayout(booking.ID, models.BookingAdjustment{Tips: &tips})
	assert.ErrorIs(t, err, ErrPayoutAlreadySettled)
}

func TestAcceptLosesRaceToCancel(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	// The customer cancels between the worker's read and conditional update
	flipAfterRead(t, db, "cancel_wins", func() {
		db.Exec("UPDATE bookings SET status = ? WHERE id = ?",
			models.BookingStatusCancelled, booking.ID)
	})

	_, err := svc.Accept(fx.worker.ID, booking.ID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.BookingStatusCancelled, transitionErr.From)
	assert.Equal(t, models.BookingStatusAccepted, transitionErr.To)

	// The cancellation stands
	var current models.Booking
	require.NoError(t, db.First(&current, booking.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, current.Status)
}

func TestCompleteLosesRaceOnPayment(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	_, err := svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	markPaid(t, db, booking.ID)

	// Payment flips away between the read and the guarded update; the
	// re-read reports the unmet precondition by name
	flipAfterRead(t, db, "payment_reset", func() {
		db.Exec("UPDATE bookings SET payment_status = ? WHERE id = ?",
			models.PaymentStatusPending, booking.ID)
	})

	_, err = svc.Complete(fx.worker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	var current models.Booking
	require.NoError(t, db.First(&current, booking.ID).Error)
	assert.Equal(t, models.BookingStatusAccepted, current.Status)
}

func TestAdjustPayoutLosesRaceToSettlement(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)
	booking := createTestBooking(t, svc, fx)

	_, err := svc.Accept(fx.worker.ID, booking.ID)
	require.NoError(t, err)
	markPaid(t, db, booking.ID)
	_, err = svc.Complete(fx.worker.ID, booking.ID)
	require.NoError(t, err)

	// The payout job settles between the read and the conditional update
	flipAfterRead(t, db, "settlement_wins", func() {
		db.Exec("UPDATE bookings SET worker_payout_status = ? WHERE id = ?",
			models.PayoutStatusCompleted, booking.ID)
	})

	tips := 30.0
	_, err = svc.AdjustPayout(booking.ID, models.BookingAdjustment{Tips: &tips})
	assert.ErrorIs(t, err, ErrPayoutAlreadySettled)

	// The lost adjustment was not written
	var current models.Booking
	require.NoError(t, db.First(&current, booking.ID).Error)
	assert.Zero(t, current.Tips)
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	svc := NewBookingService(db, nil)

	var ids []uint
	for i := 0; i < 3; i++ {
		b := createTestBooking(t, svc, fx)
		ids = append(ids, b.ID)
	}
	_, err := svc.Reject(fx.worker.ID, ids[1])
	require.NoError(t, err)

	// Newest first
	list, err := svc.List(ListFilter{UserID: fx.customer.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	// Status filter
	list, err = svc.List(ListFilter{UserID: fx.customer.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ListFilter{WorkerID: fx.worker.ID, Status: "rejected"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID)

	// "all" and empty behave the same
	list, err = svc.List(ListFilter{UserID: fx.customer.ID, Status: "all"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	// Unknown status filter is rejected
	_, err = svc.List(ListFilter{UserID: fx.customer.ID, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)

	// Pagination
	list, err = svc.List(ListFilter{UserID: fx.customer.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ListFilter{UserID: fx.customer.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[0], list[0].ID)
}

func TestDispatchBookingEventDedup(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixtures(t, db)
	notifier := NewNotificationService(db, nil)

	require.NoError(t, notifier.DispatchBookingEvent(fx.worker.ID, 7, models.NotificationBookingCreated))
	require.NoError(t, notifier.DispatchBookingEvent(fx.worker.ID, 7, models.NotificationBookingCreated))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", fx.worker.ID, models.NotificationBookingCreated).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A different booking with the same event still goes through
	require.NoError(t, notifier.DispatchBookingEvent(fx.worker.ID, 8, models.NotificationBookingCreated))
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", fx.worker.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// A booking whose id is a prefix of an earlier one is not suppressed
	require.NoError(t, notifier.DispatchBookingEvent(fx.customer.ID, 78, models.NotificationBookingAccepted))
	require.NoError(t, notifier.DispatchBookingEvent(fx.customer.ID, 7, models.NotificationBookingAccepted))
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", fx.customer.ID, models.NotificationBookingAccepted).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{From: models.BookingStatusCompleted, To: models.BookingStatusCancelled}
	msg := err.Error()
	assert.Contains(t, msg, fmt.Sprintf("%q", models.BookingStatusCompleted))
	assert.Contains(t, msg, fmt.Sprintf("%q", models.BookingStatusCancelled))
}
