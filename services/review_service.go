package services

import (
	"log"

	"gorm.io/gorm"

	"servicehub-server/models"
)

// ReviewService creates reviews for completed bookings and keeps the
// worker profile aggregates (rating, review count) in sync.
type ReviewService struct {
	db       *gorm.DB
	bookings *BookingService
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, bookings *BookingService) *ReviewService {
	return &ReviewService{db: db, bookings: bookings}
}

// Create records a review for a completed booking. The rating is stamped
// onto the booking first, which enforces ownership, the completed-state
// precondition and the one-review-per-booking rule.
func (rs *ReviewService) Create(userID uint, req *models.ReviewCreate) (*models.Review, error) {
	booking, err := rs.bookings.Rate(userID, req.BookingID, req.Rating)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		BookingID: booking.ID,
		UserID:    userID,
		WorkerID:  booking.WorkerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := rs.db.Create(review).Error; err != nil {
		return nil, err
	}

	if err := rs.refreshWorkerStats(booking.WorkerID); err != nil {
		// The review itself is saved; a stale aggregate is recomputed on
		// the next review for this worker.
		log.Printf("⚠️ Failed to refresh rating stats for worker %d: %v", booking.WorkerID, err)
	}

	return review, nil
}

// ListForWorker returns all reviews left for a worker, newest first.
func (rs *ReviewService) ListForWorker(workerID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := rs.db.Where("worker_id = ?", workerID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// refreshWorkerStats recomputes the average rating and review count on
// the worker's profile from the reviews table.
func (rs *ReviewService) refreshWorkerStats(workerID uint) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	if err := rs.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("worker_id = ?", workerID).
		Scan(&stats).Error; err != nil {
		return err
	}

	return rs.db.Model(&models.WorkerProfile{}).
		Where("user_id = ?", workerID).
		Updates(map[string]interface{}{
			"rating":        stats.Avg,
			"total_reviews": stats.Count,
		}).Error
}
