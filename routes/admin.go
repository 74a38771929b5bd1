package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub-server/database"
	"servicehub-server/middleware"
	"servicehub-server/models"
	"servicehub-server/services"
)

// RegisterAdminRoutes registers admin-only routes
func RegisterAdminRoutes(router *gin.RouterGroup, bookings *services.BookingService) {
	admin := router.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	// List all bookings, optionally by status, customer or worker
	admin.GET("/bookings", func(c *gin.Context) {
		limit, offset := parsePagination(c)

		filter := services.ListFilter{
			Status: c.Query("status"),
			Limit:  limit,
			Offset: offset,
		}
		if raw := c.Query("user_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = uint(id)
		}
		if raw := c.Query("worker_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker_id"})
				return
			}
			filter.WorkerID = uint(id)
		}

		list, err := bookings.List(filter)
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

	// Grant tips or a bonus on a booking before the payout settles
	admin.POST("/bookings/:id/adjustments", func(c *gin.Context) {
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req models.BookingAdjustment
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		booking, err := bookings.AdjustPayout(bookingID, req)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Adjustment applied",
			"booking": booking,
		})
	})

	// Add a service to the catalog
	admin.POST("/services", func(c *gin.Context) {
		var req models.ServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var category models.ServiceCategory
		if err := database.DB.First(&category, req.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown category",
			})
			return
		}

		service := models.Service{
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Duration:    req.Duration,
			IsActive:    true,
		}
		if err := database.DB.Create(&service).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create service",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Service created",
			"service": service,
		})
	})

	// Update a catalog service
	admin.PUT("/services/:id", func(c *gin.Context) {
		serviceID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req models.ServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var service models.Service
		if err := database.DB.First(&service, serviceID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Service not found",
			})
			return
		}

		updates := map[string]interface{}{
			"category_id": req.CategoryID,
			"name":        req.Name,
			"description": req.Description,
			"price":       req.Price,
		}
		if req.Duration > 0 {
			updates["duration"] = req.Duration
		}
		if err := database.DB.Model(&service).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update service",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Service updated",
			"service": service,
		})
	})

	// Booking counts per status for the dashboard
	admin.GET("/dashboard/stats", func(c *gin.Context) {
		statuses := []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusAccepted,
			models.BookingStatusRejected,
			models.BookingStatusCompleted,
			models.BookingStatusCancelled,
		}

		byStatus := gin.H{}
		for _, status := range statuses {
			var count int64
			if err := database.DB.Model(&models.Booking{}).
				Where("status = ?", status).Count(&count).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to compute stats",
				})
				return
			}
			byStatus[string(status)] = count
		}

		var userCount, workerCount, pendingPayouts int64
		database.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&userCount)
		database.DB.Model(&models.User{}).Where("role = ?", models.RoleWorker).Count(&workerCount)
		database.DB.Model(&models.Booking{}).
			Where("status = ? AND worker_payout_status = ?",
				models.BookingStatusCompleted, models.PayoutStatusPending).
			Count(&pendingPayouts)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"stats": gin.H{
				"bookings_by_status": byStatus,
				"customers":          userCount,
				"workers":            workerCount,
				"pending_payouts":    pendingPayouts,
			},
		})
	})

	// List users
	admin.GET("/users", func(c *gin.Context) {
		limit, offset := parsePagination(c)
		if limit == 0 {
			limit = 50
		}

		query := database.DB.Model(&models.User{})
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}

		var users []models.User
		if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch users",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"users":   users,
			"count":   len(users),
		})
	})

	// Activate or deactivate a user
	admin.PATCH("/users/:id/status", func(c *gin.Context) {
		userID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req struct {
			IsActive *bool `json:"is_active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		result := database.DB.Model(&models.User{}).
			Where("id = ?", userID).
			Update("is_active", *req.IsActive)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update user status",
			})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "User status updated",
			"is_active": *req.IsActive,
		})
	})
}
