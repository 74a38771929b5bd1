package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"servicehub-server/models"
)

// BookingService owns the booking lifecycle: creation, the status transition
// guard, favorites, ratings and the role-scoped listing queries.
//
// Every status change goes through a conditional update ("set status to X
// only where status is still Y") so that two concurrent requests - say a
// worker accept racing a user cancel - can never both win. The loser of the
// race gets an InvalidTransitionError computed from the re-read state.
type BookingService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB, notifier *NotificationService) *BookingService {
	return &BookingService{db: db, notifier: notifier}
}

// Create stores a new booking in the pending state. The total amount is
// fixed at creation from the service's listed price.
func (s *BookingService) Create(userID uint, req models.BookingCreate) (*models.Booking, error) {
	var worker models.User
	if err := s.db.First(&worker, req.WorkerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	if !worker.IsWorker() {
		return nil, ErrWorkerNotFound
	}

	var service models.Service
	if err := s.db.Where("is_active = ?", true).First(&service, req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	booking := models.Booking{
		UserID:             userID,
		ServiceID:          req.ServiceID,
		WorkerID:           req.WorkerID,
		Status:             models.BookingStatusPending,
		PaymentStatus:      models.PaymentStatusPending,
		WorkerPayoutStatus: models.PayoutStatusPending,
		ScheduledDate:      req.ScheduledDate,
		ScheduledTime:      req.ScheduledTime,
		Address:            req.Address,
		Notes:              req.Notes,
		TotalAmount:        service.Price,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, err
	}

	s.dispatch(booking.WorkerID, booking.ID, models.NotificationBookingCreated)

	return &booking, nil
}

// GetByID returns a booking visible to the given actor: its owner, its
// assigned worker, or an admin.
func (s *BookingService) GetByID(actorID uint, role models.UserRole, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Service").Preload("Worker").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && booking.UserID != actorID && booking.WorkerID != actorID {
		return nil, ErrUnauthorized
	}

	return &booking, nil
}

// Accept moves a pending booking to accepted. Worker-only.
func (s *BookingService) Accept(workerID, bookingID uint) (*models.Booking, error) {
	return s.transition(workerID, bookingID, models.BookingStatusAccepted)
}

// Reject moves a pending booking to rejected. Worker-only, terminal.
func (s *BookingService) Reject(workerID, bookingID uint) (*models.Booking, error) {
	return s.transition(workerID, bookingID, models.BookingStatusRejected)
}

// Complete moves an accepted booking to completed. Worker-only, and the
// booking must already be paid. Completed bookings are picked up by the
// payout batch, which settles the worker's earnings.
func (s *BookingService) Complete(workerID, bookingID uint) (*models.Booking, error) {
	return s.transition(workerID, bookingID, models.BookingStatusCompleted)
}

// Cancel moves a pending or accepted booking to cancelled. Owner-only, terminal.
func (s *BookingService) Cancel(userID, bookingID uint) (*models.Booking, error) {
	return s.transition(userID, bookingID, models.BookingStatusCancelled)
}

// transition enforces the role/ownership rules and the transition table, then
// applies the change with a compare-and-swap on the current status.
func (s *BookingService) transition(actorID, bookingID uint, target models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch target {
	case models.BookingStatusAccepted, models.BookingStatusRejected, models.BookingStatusCompleted:
		// Worker transitions require the booking to be assigned to this worker
		if booking.WorkerID != actorID {
			return nil, ErrUnauthorized
		}
	case models.BookingStatusCancelled:
		// Cancellation requires the booking to belong to this user
		if booking.UserID != actorID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, &InvalidTransitionError{From: booking.Status, To: target}
	}

	if !booking.Status.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: booking.Status, To: target}
	}

	if target == models.BookingStatusCompleted && booking.PaymentStatus != models.PaymentStatusPaid {
		return nil, ErrPaymentRequired
	}

	cond := s.db.Model(&models.Booking{}).Where("id = ? AND status = ?", bookingID, booking.Status)
	if target == models.BookingStatusCompleted {
		cond = cond.Where("payment_status = ?", models.PaymentStatusPaid)
	}

	res := cond.Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost a race against a concurrent transition; report against the
		// state that actually won.
		if err := s.db.First(&booking, bookingID).Error; err != nil {
			return nil, err
		}
		if target == models.BookingStatusCompleted && booking.Status == models.BookingStatusAccepted &&
			booking.PaymentStatus != models.PaymentStatusPaid {
			return nil, ErrPaymentRequired
		}
		return nil, &InvalidTransitionError{From: booking.Status, To: target}
	}

	booking.Status = target
	s.notifyTransition(&booking, target)

	return &booking, nil
}

// notifyTransition dispatches the single notification owed to the
// counterpart actor for a committed transition. The state change is already
// durable at this point; dispatch runs async and never rolls it back.
func (s *BookingService) notifyTransition(booking *models.Booking, target models.BookingStatus) {
	switch target {
	case models.BookingStatusAccepted:
		s.dispatch(booking.UserID, booking.ID, models.NotificationBookingAccepted)
	case models.BookingStatusRejected:
		s.dispatch(booking.UserID, booking.ID, models.NotificationBookingRejected)
	case models.BookingStatusCompleted:
		s.dispatch(booking.UserID, booking.ID, models.NotificationBookingCompleted)
	case models.BookingStatusCancelled:
		s.dispatch(booking.WorkerID, booking.ID, models.NotificationBookingCancelled)
	}
}

func (s *BookingService) dispatch(userID, bookingID uint, event string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.DispatchBookingEvent(userID, bookingID, event); err != nil {
			log.Printf("⚠️ Failed to dispatch %s notification for booking %d: %v", event, bookingID, err)
		}
	}()
}

// Rate records the one-time rating for a completed booking. The conditional
// update ("rating IS NULL") makes a second attempt lose even under
// concurrent submissions.
func (s *BookingService) Rate(userID, bookingID uint, rating int) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if booking.UserID != userID {
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}
	if booking.Rating != nil {
		return nil, ErrRatingAlreadySet
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND rating IS NULL AND status = ?", bookingID, models.BookingStatusCompleted).
		Update("rating", rating)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrRatingAlreadySet
	}

	booking.Rating = &rating
	return &booking, nil
}

// ToggleFavorite flips the favorite flag on a booking. Owner-only, allowed
// in any lifecycle state.
func (s *BookingService) ToggleFavorite(userID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if booking.UserID != userID {
		return nil, ErrUnauthorized
	}

	favorite := !booking.IsFavorite
	if err := s.db.Model(&booking).Update("is_favorite", favorite).Error; err != nil {
		return nil, err
	}

	booking.IsFavorite = favorite
	return &booking, nil
}

// AdjustPayout sets tips/bonus on a booking before its payout settles.
func (s *BookingService) AdjustPayout(bookingID uint, adj models.BookingAdjustment) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if booking.WorkerPayoutStatus == models.PayoutStatusCompleted {
		return nil, ErrPayoutAlreadySettled
	}

	updates := make(map[string]interface{})
	if adj.Tips != nil {
		updates["tips"] = *adj.Tips
		booking.Tips = *adj.Tips
	}
	if adj.Bonus != nil {
		updates["bonus"] = *adj.Bonus
		booking.Bonus = *adj.Bonus
	}
	if len(updates) == 0 {
		return &booking, nil
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND worker_payout_status = ?", bookingID, models.PayoutStatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent settlement won; the adjustment was not written.
		return nil, ErrPayoutAlreadySettled
	}

	return &booking, nil
}

// ListFilter narrows a booking listing. A zero field means "no filter";
// Status "all" (or empty) matches every status.
type ListFilter struct {
	UserID   uint
	WorkerID uint
	Status   string
	Limit    int
	Offset   int
}

// List returns bookings matching the filter, most recent first.
func (s *BookingService) List(filter ListFilter) ([]models.Booking, error) {
	query := s.db.Model(&models.Booking{}).
		Preload("Service").
		Order("created_at DESC")

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.WorkerID != 0 {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.Status != "" && filter.Status != "all" {
		if !models.BookingStatus(filter.Status).IsValid() {
			return nil, ErrInvalidStatusFilter
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
