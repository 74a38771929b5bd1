package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicehub-server/middleware"
	"servicehub-server/models"
	"servicehub-server/services"
)

// RegisterBookingRoutes registers the customer-facing booking routes
func RegisterBookingRoutes(router *gin.RouterGroup, bookings *services.BookingService, payments *services.PaymentService) {
	// Create a booking
	router.POST("/bookings", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req models.BookingCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		booking, err := bookings.Create(userID, req)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Booking created successfully",
			"booking": booking,
		})
	})

	// Get a single booking (owner, assigned worker or admin)
	router.GET("/bookings/:id", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		userID := c.GetUint("user_id")
		role := models.UserRole(c.GetString("role"))

		booking, err := bookings.GetByID(userID, role, bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"booking": booking,
		})
	})

	// Cancel a booking
	router.PUT("/bookings/:id/cancel", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bookings.Cancel(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking cancelled",
			"booking": booking,
		})
	})

	// Record a cash payment for an accepted booking
	router.PUT("/bookings/:id/payment", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req models.CashPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		booking, err := payments.RecordCashPayment(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payment recorded",
			"booking": booking,
		})
	})

	// Toggle the favorite flag on a booking
	router.PUT("/bookings/:id/favorite", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bookings.ToggleFavorite(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"is_favorite": booking.IsFavorite,
			"booking":     booking,
		})
	})

	// List the authenticated user's bookings, newest first
	router.GET("/user/bookings", func(c *gin.Context) {
		limit, offset := parsePagination(c)

		list, err := bookings.List(services.ListFilter{
			UserID: c.GetUint("user_id"),
			Status: c.Query("status"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"bookings": list,
			"count":    len(list),
		})
	})
}

// RegisterWorkerBookingRoutes registers the worker-facing booking routes.
// All of them require the worker role.
func RegisterWorkerBookingRoutes(router *gin.RouterGroup, bookings *services.BookingService) {
	worker := router.Group("/worker")
	worker.Use(middleware.RequireRole(models.RoleWorker))

	// List bookings assigned to the authenticated worker
	worker.GET("/bookings", func(c *gin.Context) {
		limit, offset := parsePagination(c)

		list, err := bookings.List(services.ListFilter{
			WorkerID: c.GetUint("user_id"),
			Status:   c.Query("status"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"bookings": list,
			"count":    len(list),
		})
	})

	// Accept a pending booking
	worker.PUT("/bookings/:id/accept", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bookings.Accept(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking accepted",
			"booking": booking,
		})
	})

	// Reject a pending booking
	worker.PUT("/bookings/:id/reject", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bookings.Reject(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking rejected",
			"booking": booking,
		})
	})

	// Complete an accepted booking. Requires the payment to be settled.
	worker.PUT("/bookings/:id/complete", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bookings.Complete(c.GetUint("user_id"), bookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking completed",
			"booking": booking,
		})
	})

	// Earnings summary across completed bookings
	worker.GET("/earnings", func(c *gin.Context) {
		list, err := bookings.List(services.ListFilter{
			WorkerID: c.GetUint("user_id"),
			Status:   string(models.BookingStatusCompleted),
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		var total, tips, bonus, pendingPayout float64
		for _, b := range list {
			total += b.WorkerEarnings()
			tips += b.Tips
			bonus += b.Bonus
			if b.WorkerPayoutStatus == models.PayoutStatusPending {
				pendingPayout += b.WorkerEarnings()
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"earnings": gin.H{
				"completed_jobs": len(list),
				"total":          total,
				"tips":           tips,
				"bonus":          bonus,
				"pending_payout": pendingPayout,
			},
		})
	})
}
