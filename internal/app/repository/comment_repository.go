package repository

import (
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id uint) (*model.Comment, error)
	FindByPhoto(photoID uint) ([]model.Comment, error)
	FindByUser(userID uint, skip, limit int) ([]model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		logger.Error("Failed to create comment in database", err, map[string]interface{}{
			"photo_id": comment.PhotoID,
			"user_id":  comment.UserID,
		})
		return err
	}
	return r.db.Preload("User").First(comment, comment.ID).Error
}

func (r *commentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByPhoto lists a photo's comments in posting order
func (r *commentRepository) FindByPhoto(photoID uint) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.
		Where("photo_id = ?", photoID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		logger.Error("Failed to list photo comments", err, map[string]interface{}{
			"photo_id": photoID,
		})
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindByUser(userID uint, skip, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Update(comment *model.Comment) error {
	return r.db.Model(comment).Update("comment", comment.Comment).Error
}

func (r *commentRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Comment{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete comment from database", result.Error, map[string]interface{}{
			"comment_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
