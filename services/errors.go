package services

import (
	"errors"
	"fmt"

	"servicehub-server/models"
)

// Errors surfaced by the booking lifecycle. Handlers map these onto HTTP
// statuses; the messages are shown to the caller verbatim.
var (
	ErrNotFound                  = errors.New("booking not found")
	ErrUnauthorized              = errors.New("you are not allowed to perform this action")
	ErrPaymentVerificationFailed = errors.New("payment verification failed: gateway signature mismatch")
	ErrPaymentRequired           = errors.New("booking cannot be completed: payment has not been received")
	ErrPaymentAlreadySettled     = errors.New("payment has already been settled for this booking")
	ErrBookingClosed             = errors.New("booking is no longer active")
	ErrCashPaymentNotAccepted    = errors.New("cash payment can only be recorded for an accepted booking")
	ErrRatingAlreadySet          = errors.New("this booking has already been rated")
	ErrBookingNotCompleted       = errors.New("only completed bookings can be reviewed")
	ErrPayoutAlreadySettled      = errors.New("worker payout has already been settled for this booking")
	ErrWorkerNotFound            = errors.New("worker not found")
	ErrServiceNotFound           = errors.New("service not found")
	ErrInvalidStatusFilter       = errors.New("unknown booking status filter")
)

// InvalidTransitionError reports a status change that is not in the
// transition table, naming the current state and the attempted target.
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: booking is %q and cannot move to %q", e.From, e.To)
}
