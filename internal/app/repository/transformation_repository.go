package repository

import (
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

type TransformationRepository interface {
	Create(t *model.Transformation) error
	FindByID(id uint) (*model.Transformation, error)
	FindByPhoto(photoID uint) ([]model.Transformation, error)
	Delete(id uint) error
	CreateQrCode(qr *model.QrCode) error
	FindQrCode(transformationID uint) (*model.QrCode, error)
}

type transformationRepository struct {
	db *gorm.DB
}

func NewTransformationRepository(db *gorm.DB) TransformationRepository {
	return &transformationRepository{db: db}
}

func (r *transformationRepository) Create(t *model.Transformation) error {
	logger.Debug("Creating transformation in database", map[string]interface{}{
		"photo_id":   t.PhotoID,
		"operations": t.Operations,
	})

	if err := r.db.Create(t).Error; err != nil {
		logger.Error("Failed to create transformation in database", err, map[string]interface{}{
			"photo_id": t.PhotoID,
		})
		return err
	}
	return nil
}

func (r *transformationRepository) FindByID(id uint) (*model.Transformation, error) {
	var t model.Transformation
	if err := r.db.Preload("QrCode").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transformationRepository) FindByPhoto(photoID uint) ([]model.Transformation, error) {
	var list []model.Transformation
	if err := r.db.
		Where("photo_id = ?", photoID).
		Preload("QrCode").
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes the transformation together with its QR code
func (r *transformationRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transformation_id = ?", id).Delete(&model.QrCode{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Transformation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *transformationRepository) CreateQrCode(qr *model.QrCode) error {
	if err := r.db.Create(qr).Error; err != nil {
		logger.Error("Failed to create qr code in database", err, map[string]interface{}{
			"transformation_id": qr.TransformationID,
		})
		return err
	}
	return nil
}

func (r *transformationRepository) FindQrCode(transformationID uint) (*model.QrCode, error) {
	var qr model.QrCode
	if err := r.db.Where("transformation_id = ?", transformationID).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}
