package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"servicehub-server/database"
	"servicehub-server/models"
)

// RegisterNotificationRoutes registers in-app notification routes
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")

	// List the user's notifications, newest first
	notifications.GET("", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		limit, offset := parsePagination(c)
		if limit == 0 {
			limit = 50
		}

		var list []models.Notification
		if err := database.DB.Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(limit).Offset(offset).
			Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch notifications",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"notifications": list,
			"count":         len(list),
		})
	})

	// Unread notification count
	notifications.GET("/unread-count", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var count int64
		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", userID, false).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to count notifications",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   count,
		})
	})

	// Mark one notification as read
	notifications.POST("/mark-read/:id", func(c *gin.Context) {
		notificationID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		userID := c.GetUint("user_id")

		result := database.DB.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Update("read", true)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to mark notification as read",
			})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Notification not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Notification marked as read",
		})
	})

	// Mark all notifications as read
	notifications.POST("/mark-all-read", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", userID, false).
			Update("read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to mark notifications as read",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "All notifications marked as read",
		})
	})

	// Register an Expo push token for the device
	notifications.POST("/register-token", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			Token    string `json:"token" binding:"required"`
			Platform string `json:"platform" binding:"required,oneof=ios android"`
			DeviceID string `json:"device_id"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data",
				"error":   err.Error(),
			})
			return
		}

		// Re-activate the token if this device registered before
		var existing models.PushToken
		if err := database.DB.Where("token = ?", req.Token).First(&existing).Error; err == nil {
			existing.UserID = userID
			existing.Platform = req.Platform
			existing.DeviceID = req.DeviceID
			existing.Active = true
			if err := database.DB.Save(&existing).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to update push token",
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Push token updated",
			})
			return
		}

		token := models.PushToken{
			UserID:   userID,
			Token:    req.Token,
			Platform: req.Platform,
			DeviceID: req.DeviceID,
			Active:   true,
		}

		if err := database.DB.Create(&token).Error; err != nil {
			log.Printf("❌ Failed to register push token for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to register push token",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Push token registered",
		})
	})
}
