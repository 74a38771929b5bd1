package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicehub-server/models"
	"servicehub-server/services"
)

// RegisterPaymentRoutes registers the gateway payment routes
func RegisterPaymentRoutes(router *gin.RouterGroup, payments *services.PaymentService) {
	// Create a gateway order for a booking
	router.POST("/payment/create-order", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req models.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		order, err := payments.CreateOrder(userID, req.BookingID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   order,
		})
	})

	// Verify a gateway payment and settle the booking
	router.POST("/payment/verify", func(c *gin.Context) {
		var req models.PaymentVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		booking, err := payments.ConfirmPayment(req)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payment verified",
			"booking": booking,
		})
	})
}
