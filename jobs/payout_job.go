package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"servicehub-server/models"
	"servicehub-server/services"
)

// PayoutJob settles worker payouts for completed, paid bookings
type PayoutJob struct {
	db       *gorm.DB
	notifier *services.NotificationService
	interval time.Duration
	stopChan chan bool
}

// NewPayoutJob creates a new payout job
func NewPayoutJob(db *gorm.DB, notifier *services.NotificationService, interval time.Duration) *PayoutJob {
	return &PayoutJob{
		db:       db,
		notifier: notifier,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the payout job
func (j *PayoutJob) Start() {
	go j.run()
	log.Println("🚀 Payout job started")
}

// Stop stops the payout job
func (j *PayoutJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Payout job stopped")
}

// run executes the payout job
func (j *PayoutJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.SettleDuePayouts()
		case <-j.stopChan:
			return
		}
	}
}

// SettleDuePayouts finds completed, paid bookings with a pending worker
// payout and settles them.
func (j *PayoutJob) SettleDuePayouts() {
	var due []models.Booking

	err := j.db.Where("status = ? AND payment_status = ? AND worker_payout_status = ?",
		models.BookingStatusCompleted, models.PaymentStatusPaid, models.PayoutStatusPending).
		Find(&due).Error
	if err != nil {
		log.Printf("❌ Error scanning for due payouts: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}

	log.Printf("💸 Found %d bookings with a due payout", len(due))

	for _, booking := range due {
		j.settle(booking)
	}
}

// settle marks a single booking's payout as completed. The conditional
// update keeps a concurrent admin adjustment or a second job run from
// settling the same payout twice.
func (j *PayoutJob) settle(booking models.Booking) {
	now := time.Now()

	result := j.db.Model(&models.Booking{}).
		Where("id = ? AND worker_payout_status = ?", booking.ID, models.PayoutStatusPending).
		Updates(map[string]interface{}{
			"worker_payout_status": models.PayoutStatusCompleted,
			"payout_at":            now,
		})
	if result.Error != nil {
		log.Printf("❌ Failed to settle payout for booking %d: %v", booking.ID, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		// Already settled elsewhere
		return
	}

	// Bump the worker's completed jobs counter
	if err := j.db.Model(&models.WorkerProfile{}).
		Where("user_id = ?", booking.WorkerID).
		UpdateColumn("completed_jobs", gorm.Expr("completed_jobs + 1")).Error; err != nil {
		log.Printf("⚠️ Failed to bump completed jobs for worker %d: %v", booking.WorkerID, err)
	}

	log.Printf("✅ Payout settled for booking %d (worker %d, amount %.2f)",
		booking.ID, booking.WorkerID, booking.WorkerEarnings())

	if j.notifier != nil {
		if err := j.notifier.DispatchBookingEvent(booking.WorkerID, booking.ID, models.NotificationPayoutCompleted); err != nil {
			log.Printf("⚠️ Failed to notify worker %d of payout: %v", booking.WorkerID, err)
		}
	}
}
