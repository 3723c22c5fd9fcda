package services

import (
	"log"

	"cleanup-platform/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeedBadges inserts the default badge set when the table is empty. Codes are
// slugs of the badge names.
func SeedBadges(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.BadgeDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defs := make([]models.BadgeDefinition, len(models.DefaultBadges))
	copy(defs, models.DefaultBadges)
	for i := range defs {
		defs[i].Code = slug.Make(defs[i].Name)
		defs[i].IsActive = true
	}

	if err := db.Create(&defs).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded %d default badges", len(defs))
	return nil
}
