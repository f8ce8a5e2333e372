package repository

import (
	"strings"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

type PhotoRepository interface {
	Create(photo *model.Photo) error
	FindByID(id uint) (*model.Photo, error)
	Exists(id uint) (bool, error)
	FindAll(query string, skip, limit int) ([]model.Photo, int64, error)
	FindByOwner(ownerID uint, skip, limit int) ([]model.Photo, error)
	Update(photo *model.Photo, tags []model.Tag) error
	Delete(id uint) error
}

type photoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(photo *model.Photo) error {
	logger.Debug("Creating photo in database", map[string]interface{}{
		"owner_id":  photo.OwnerID,
		"public_id": photo.PublicID,
		"tags":      len(photo.Tags),
	})

	if err := r.db.Create(photo).Error; err != nil {
		logger.Error("Failed to create photo in database", err, map[string]interface{}{
			"owner_id": photo.OwnerID,
		})
		return err
	}

	logger.Debug("Photo created in database", map[string]interface{}{
		"photo_id": photo.ID,
	})
	return nil
}

// FindByID loads a photo with its owner, tags, transformations and comments
func (r *photoRepository) FindByID(id uint) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.
		Preload("Owner").
		Preload("Tags").
		Preload("Transformations.QrCode").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		First(&photo, id).Error
	if err != nil {
		logger.Error("Failed to find photo by ID in database", err, map[string]interface{}{
			"photo_id": id,
		})
		return nil, err
	}
	return &photo, nil
}

// FindAll pages through photos, newest first. A non-empty query matches the
// title or any tag name, case-insensitively.
// Exists reports whether a photo row exists without loading it
func (r *photoRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Photo{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		logger.Error("Failed to check photo existence", err, map[string]interface{}{
			"photo_id": id,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *photoRepository) FindAll(query string, skip, limit int) ([]model.Photo, int64, error) {
	var photos []model.Photo
	var total int64

	db := r.db.Model(&model.Photo{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		tagged := r.db.Table("photo_tags").
			Select("photo_tags.photo_id").
			Joins("JOIN tags ON tags.id = photo_tags.tag_id").
			Where("LOWER(tags.name) LIKE ?", like)
		db = db.Where("LOWER(photos.title) LIKE ? OR photos.id IN (?)", like, tagged)
	}

	if err := db.Count(&total).Error; err != nil {
		logger.Error("Failed to count photos in database", err, map[string]interface{}{
			"query": query,
		})
		return nil, 0, err
	}

	if err := db.
		Preload("Owner").
		Preload("Tags").
		Order("photos.created_at DESC, photos.id DESC").
		Offset(skip).
		Limit(limit).
		Find(&photos).Error; err != nil {
		logger.Error("Failed to list photos in database", err, map[string]interface{}{
			"query": query,
		})
		return nil, 0, err
	}

	return photos, total, nil
}

func (r *photoRepository) FindByOwner(ownerID uint, skip, limit int) ([]model.Photo, error) {
	var photos []model.Photo
	if err := r.db.
		Where("owner_id = ?", ownerID).
		Preload("Tags").
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// Update saves title, description and asset fields and, when tags is non-nil,
// replaces the tag set
func (r *photoRepository) Update(photo *model.Photo, tags []model.Tag) error {
	logger.Debug("Updating photo in database", map[string]interface{}{
		"photo_id": photo.ID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(photo).
			Updates(map[string]interface{}{
				"title":       photo.Title,
				"description": photo.Description,
				"public_id":   photo.PublicID,
				"secure_url":  photo.SecureURL,
			}).Error; err != nil {
			return err
		}

		if tags != nil {
			if err := tx.Model(photo).Association("Tags").Replace(tags); err != nil {
				return err
			}
			photo.Tags = tags
		}
		return nil
	})
}

// Delete removes a photo. Comments, ratings, transformations and QR codes
// go with it.
func (r *photoRepository) Delete(id uint) error {
	logger.Debug("Deleting photo from database", map[string]interface{}{
		"photo_id": id,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM photo_tags WHERE photo_id = ?", id).Error; err != nil {
			return err
		}
		transformations := tx.Model(&model.Transformation{}).Select("id").Where("photo_id = ?", id)
		if err := tx.Where("transformation_id IN (?)", transformations).Delete(&model.QrCode{}).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{&model.Transformation{}, &model.Comment{}, &model.Rating{}} {
			if err := tx.Where("photo_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&model.Photo{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
