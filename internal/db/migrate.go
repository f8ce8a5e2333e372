package db

import (
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.PasswordReset{},
		&model.Tag{},
		&model.Photo{},
		&model.Transformation{},
		&model.QrCode{},
		&model.Comment{},
		&model.Rating{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	logger.Info("Seeding initial data...")

	if err := seedTags(DB); err != nil {
		logger.Error("Failed to seed tags", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

var defaultTags = []string{
	"landscape", "portrait", "street", "nature", "architecture",
	"travel", "macro", "night", "black and white", "animals",
}

// seedTags inserts the default tag set into an empty tags table
func seedTags(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&model.Tag{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Tags already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	tags := make([]model.Tag, 0, len(defaultTags))
	for _, name := range defaultTags {
		tags = append(tags, model.Tag{Name: name})
	}

	if err := conn.Create(&tags).Error; err != nil {
		return err
	}

	logger.Info("Tags seeded successfully", map[string]interface{}{
		"total_records": len(tags),
	})
	return nil
}
