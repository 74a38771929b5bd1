package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servicehub-server/database"
	"servicehub-server/models"
)

// RegisterServiceRoutes registers public service catalog routes
func RegisterServiceRoutes(router *gin.RouterGroup) {
	// List active services, optionally by category
	router.GET("/services", func(c *gin.Context) {
		query := database.DB.Preload("Category").Where("is_active = ?", true)

		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}

		var services []models.Service
		if err := query.Order("name ASC").Find(&services).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch services",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"services": services,
		})
	})

	// Get a single service
	router.GET("/services/:id", func(c *gin.Context) {
		serviceID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var service models.Service
		if err := database.DB.Preload("Category").First(&service, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Service not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch service",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"service": service,
		})
	})

	// List active categories in display order
	router.GET("/categories", func(c *gin.Context) {
		var categories []models.ServiceCategory
		if err := database.DB.Where("is_active = ?", true).
			Order("sort_order ASC, name ASC").
			Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch categories",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"categories": categories,
		})
	})
}
