package repository

import (
	"math"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(rating *model.Rating) error
	FindByPhotoAndUser(photoID, userID uint) (*model.Rating, error)
	FindByPhoto(photoID uint) ([]model.Rating, error)
	Summary(photoID uint) (*model.RatingSummary, error)
	DeleteByPhotoAndUser(photoID, userID uint) error
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert creates the user's rating for a photo or overwrites the existing one
func (r *ratingRepository) Upsert(rating *model.Rating) error {
	logger.Debug("Upserting rating in database", map[string]interface{}{
		"photo_id": rating.PhotoID,
		"user_id":  rating.UserID,
		"rating":   rating.Rating,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "photo_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).Create(rating).Error
		if err != nil {
			return err
		}
		// reload so ID and CreatedAt reflect the stored row after an update
		var stored model.Rating
		if err := tx.Where("photo_id = ? AND user_id = ?", rating.PhotoID, rating.UserID).First(&stored).Error; err != nil {
			return err
		}
		*rating = stored
		return nil
	})
	if err != nil {
		logger.Error("Failed to upsert rating in database", err, map[string]interface{}{
			"photo_id": rating.PhotoID,
			"user_id":  rating.UserID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) FindByPhotoAndUser(photoID, userID uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.Where("photo_id = ? AND user_id = ?", photoID, userID).First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByPhoto(photoID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	if err := r.db.Where("photo_id = ?", photoID).Order("created_at ASC, id ASC").Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// Summary averages a photo's ratings, rounded to two decimals. A photo with
// no ratings has an average of 0.
func (r *ratingRepository) Summary(photoID uint) (*model.RatingSummary, error) {
	var row struct {
		Count   int64
		Average float64
	}
	if err := r.db.Model(&model.Rating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("photo_id = ?", photoID).
		Scan(&row).Error; err != nil {
		logger.Error("Failed to aggregate ratings", err, map[string]interface{}{
			"photo_id": photoID,
		})
		return nil, err
	}

	return &model.RatingSummary{
		PhotoID: photoID,
		Rating:  math.Round(row.Average*100) / 100,
		Count:   row.Count,
	}, nil
}

func (r *ratingRepository) DeleteByPhotoAndUser(photoID, userID uint) error {
	result := r.db.Where("photo_id = ? AND user_id = ?", photoID, userID).Delete(&model.Rating{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
