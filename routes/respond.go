package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub-server/services"
)

// respondServiceError translates a service layer error into the gin.H
// response shape used across all routes.
func respondServiceError(c *gin.Context, err error) {
	var transitionErr *services.InvalidTransitionError

	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Invalid transition",
			"message": transitionErr.Error(),
		})
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrWorkerNotFound),
		errors.Is(err, services.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrPaymentVerificationFailed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Payment verification failed",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrPaymentAlreadySettled),
		errors.Is(err, services.ErrRatingAlreadySet),
		errors.Is(err, services.ErrPayoutAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrPaymentRequired),
		errors.Is(err, services.ErrBookingClosed),
		errors.Is(err, services.ErrCashPaymentNotAccepted),
		errors.Is(err, services.ErrBookingNotCompleted),
		errors.Is(err, services.ErrInvalidStatusFilter):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
	default:
		log.Printf("❌ Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Something went wrong. Please try again.",
		})
	}
}

// parseIDParam parses a numeric path parameter, responding with 400 on
// failure. The bool reports whether parsing succeeded.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid " + name,
			"message": "The " + name + " parameter must be a positive number",
		})
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads optional limit/offset query parameters.
func parsePagination(c *gin.Context) (limit, offset int) {
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o > 0 {
		offset = o
	}
	return limit, offset
}
