package database

import (
	"log"

	"gorm.io/gorm"

	"servicehub-server/models"
)

// SeedCatalog inserts the default service categories and services when
// the catalog is empty. Safe to call on every startup.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ServiceCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.ServiceCategory{
		{Name: "Plumbing", Description: "Leak repair, fixture installation and drain maintenance", Icon: "wrench", SortOrder: 1, IsActive: true},
		{Name: "Electrical", Description: "Wiring, panel repair and lighting installation", Icon: "zap", SortOrder: 2, IsActive: true},
		{Name: "Cleaning", Description: "Residential and deep cleaning", Icon: "sparkles", SortOrder: 3, IsActive: true},
		{Name: "Painting", Description: "Interior and exterior painting", Icon: "paintbrush", SortOrder: 4, IsActive: true},
		{Name: "Carpentry", Description: "Custom furniture, doors and repairs", Icon: "hammer", SortOrder: 5, IsActive: true},
		{Name: "Appliance Repair", Description: "AC, refrigerator and washer servicing", Icon: "settings", SortOrder: 6, IsActive: true},
	}

	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	services := []models.Service{
		{CategoryID: categories[0].ID, Name: "Leak Repair", Description: "Diagnose and fix water leaks", Price: 499, Duration: 60, IsActive: true},
		{CategoryID: categories[0].ID, Name: "Tap Installation", Description: "Install or replace taps and fixtures", Price: 299, Duration: 45, IsActive: true},
		{CategoryID: categories[1].ID, Name: "Wiring Check", Description: "Full home wiring inspection", Price: 799, Duration: 90, IsActive: true},
		{CategoryID: categories[1].ID, Name: "Light Fitting", Description: "Install ceiling or wall lights", Price: 249, Duration: 30, IsActive: true},
		{CategoryID: categories[2].ID, Name: "Home Deep Clean", Description: "Full home deep cleaning", Price: 1499, Duration: 240, IsActive: true},
		{CategoryID: categories[3].ID, Name: "Room Painting", Description: "Single room repaint, paint included", Price: 2999, Duration: 480, IsActive: true},
		{CategoryID: categories[4].ID, Name: "Door Repair", Description: "Fix hinges, locks and alignment", Price: 399, Duration: 60, IsActive: true},
		{CategoryID: categories[5].ID, Name: "AC Service", Description: "Split or window AC full service", Price: 599, Duration: 75, IsActive: true},
	}

	if err := db.Create(&services).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d categories and %d services", len(categories), len(services))
	return nil
}
