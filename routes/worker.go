package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servicehub-server/database"
	"servicehub-server/middleware"
	"servicehub-server/models"
)

// RegisterWorkerProfileRoutes registers worker profile routes. Public
// reads live on the public group, profile management on the protected one.
func RegisterWorkerProfileRoutes(public *gin.RouterGroup, protected *gin.RouterGroup) {
	// List available workers, optionally filtered by category and city
	public.GET("/workers/available", func(c *gin.Context) {
		limit := 20
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		query := database.DB.Preload("User").Preload("Category").Where("is_available = ?", true)

		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}
		if city := c.Query("city"); city != "" {
			query = query.Where("city ILIKE ?", "%"+city+"%")
		}

		var workers []models.WorkerProfile
		if err := query.Order("rating DESC").Limit(limit).Find(&workers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch workers",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"workers": workers,
		})
	})

	// Get a worker profile by user ID
	public.GET("/workers/:id", func(c *gin.Context) {
		workerID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var worker models.WorkerProfile
		if err := database.DB.Preload("User").Preload("Category").
			Where("user_id = ?", workerID).First(&worker).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Worker not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch worker profile",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"worker":  worker,
		})
	})

	profile := protected.Group("/worker/profile")
	profile.Use(middleware.RequireRole(models.RoleWorker))

	// Get own profile
	profile.GET("", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var worker models.WorkerProfile
		if err := database.DB.Preload("Category").Where("user_id = ?", userID).First(&worker).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Worker profile not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch worker profile",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"worker":  worker,
		})
	})

	// Create own profile
	profile.POST("", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var existing models.WorkerProfile
		if err := database.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Worker profile already exists",
			})
			return
		}

		var req models.WorkerProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data",
				"error":   err.Error(),
			})
			return
		}

		worker := models.WorkerProfile{
			UserID:      userID,
			CategoryID:  req.CategoryID,
			City:        req.City,
			Experience:  req.Experience,
			Skills:      req.Skills,
			HourlyRate:  req.HourlyRate,
			IsAvailable: true,
		}
		if req.IsAvailable != nil {
			worker.IsAvailable = *req.IsAvailable
		}

		if err := database.DB.Create(&worker).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create worker profile",
			})
			return
		}

		database.DB.Preload("Category").First(&worker, worker.ID)

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Worker profile created successfully",
			"worker":  worker,
		})
	})

	// Update own profile
	profile.PUT("", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req models.WorkerProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data",
				"error":   err.Error(),
			})
			return
		}

		var worker models.WorkerProfile
		if err := database.DB.Where("user_id = ?", userID).First(&worker).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Worker profile not found",
			})
			return
		}

		worker.CategoryID = req.CategoryID
		worker.City = req.City
		worker.Experience = req.Experience
		worker.Skills = req.Skills
		worker.HourlyRate = req.HourlyRate
		if req.IsAvailable != nil {
			worker.IsAvailable = *req.IsAvailable
		}

		if err := database.DB.Save(&worker).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update worker profile",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Worker profile updated successfully",
			"worker":  worker,
		})
	})

	// Toggle availability
	profile.POST("/availability", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			IsAvailable *bool `json:"is_available" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data",
			})
			return
		}

		if err := database.DB.Model(&models.WorkerProfile{}).
			Where("user_id = ?", userID).
			Update("is_available", *req.IsAvailable).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update availability",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Availability updated successfully",
			"is_available": *req.IsAvailable,
		})
	})
}
