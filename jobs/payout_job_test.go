package jobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"servicehub-server/database"
	"servicehub-server/models"
	"servicehub-server/services"
)

func setupJobTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	return db
}

func seedPayoutBooking(t *testing.T, db *gorm.DB, status models.BookingStatus, payment models.PaymentStatus) models.Booking {
	t.Helper()

	var workerCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&workerCount).Error)

	worker := models.User{
		FullName:     "Payout Worker",
		PhoneNumber:  fmt.Sprintf("+141555502%02d", workerCount),
		PasswordHash: "x", Role: models.RoleWorker, IsActive: true,
	}
	require.NoError(t, db.Create(&worker).Error)

	profile := models.WorkerProfile{UserID: worker.ID, CategoryID: 1, IsAvailable: true}
	require.NoError(t, db.Create(&profile).Error)

	booking := models.Booking{
		UserID:             worker.ID + 1000,
		ServiceID:          1,
		WorkerID:           worker.ID,
		Status:             status,
		PaymentStatus:      payment,
		WorkerPayoutStatus: models.PayoutStatusPending,
		ScheduledDate:      "2025-03-01",
		ScheduledTime:      "10:00",
		Address:            "42 Test Street",
		TotalAmount:        500,
		Tips:               50,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func TestSettleDuePayouts(t *testing.T) {
	db := setupJobTestDB(t)
	notifier := services.NewNotificationService(db, nil)
	job := NewPayoutJob(db, notifier, time.Minute)

	due := seedPayoutBooking(t, db, models.BookingStatusCompleted, models.PaymentStatusPaid)

	job.SettleDuePayouts()

	var fresh models.Booking
	require.NoError(t, db.First(&fresh, due.ID).Error)
	assert.Equal(t, models.PayoutStatusCompleted, fresh.WorkerPayoutStatus)
	require.NotNil(t, fresh.PayoutAt)

	// The worker's completed jobs counter is bumped
	var profile models.WorkerProfile
	require.NoError(t, db.Where("user_id = ?", due.WorkerID).First(&profile).Error)
	assert.Equal(t, 1, profile.CompletedJobs)

	// The worker gets a payout notification
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", due.WorkerID, models.NotificationPayoutCompleted).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A second run is a no-op
	job.SettleDuePayouts()
	require.NoError(t, db.Where("user_id = ?", due.WorkerID).First(&profile).Error)
	assert.Equal(t, 1, profile.CompletedJobs)
}

func TestSettleSkipsIneligibleBookings(t *testing.T) {
	db := setupJobTestDB(t)
	job := NewPayoutJob(db, nil, time.Minute)

	unpaid := seedPayoutBooking(t, db, models.BookingStatusCompleted, models.PaymentStatusPending)
	active := seedPayoutBooking(t, db, models.BookingStatusAccepted, models.PaymentStatusPaid)

	job.SettleDuePayouts()

	for _, id := range []uint{unpaid.ID, active.ID} {
		var fresh models.Booking
		require.NoError(t, db.First(&fresh, id).Error)
		assert.Equal(t, models.PayoutStatusPending, fresh.WorkerPayoutStatus)
		assert.Nil(t, fresh.PayoutAt)
	}
}
