package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicehub-server/models"
	"servicehub-server/services"
)

// RegisterReviewRoutes registers review creation and listing routes
func RegisterReviewRoutes(protected *gin.RouterGroup, public *gin.RouterGroup, reviews *services.ReviewService) {
	// Leave a review for a completed booking (one per booking)
	protected.POST("/reviews", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req models.ReviewCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		review, err := reviews.Create(userID, &req)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Review submitted",
			"review":  review,
		})
	})

	// List reviews for a worker (public)
	public.GET("/workers/:id/reviews", func(c *gin.Context) {
		workerID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		list, err := reviews.ListForWorker(workerID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"reviews": list,
			"count":   len(list),
		})
	})
}
