package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidRating  = fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
)

type RatingService interface {
	RatePhoto(userID, photoID uint, value int) (*model.Rating, error)
	GetSummary(photoID uint) (*model.RatingSummary, error)
	ListRatings(photoID uint) ([]model.Rating, error)
	DeleteRating(photoID, userID uint) error
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	photoRepo  repository.PhotoRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, photoRepo repository.PhotoRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		photoRepo:  photoRepo,
	}
}

// RatePhoto sets the user's rating for a photo, replacing any earlier one
func (s *ratingService) RatePhoto(userID, photoID uint, value int) (*model.Rating, error) {
	if value < model.MinRating || value > model.MaxRating {
		return nil, ErrInvalidRating
	}
	if err := s.ensurePhoto(photoID); err != nil {
		return nil, err
	}

	rating := &model.Rating{
		Rating:  value,
		PhotoID: photoID,
		UserID:  userID,
	}
	if err := s.ratingRepo.Upsert(rating); err != nil {
		return nil, err
	}

	logger.Info("Photo rated", map[string]interface{}{
		"photo_id": photoID,
		"user_id":  userID,
		"rating":   value,
	})
	return rating, nil
}

func (s *ratingService) GetSummary(photoID uint) (*model.RatingSummary, error) {
	if err := s.ensurePhoto(photoID); err != nil {
		return nil, err
	}
	return s.ratingRepo.Summary(photoID)
}

func (s *ratingService) ListRatings(photoID uint) ([]model.Rating, error) {
	if err := s.ensurePhoto(photoID); err != nil {
		return nil, err
	}
	return s.ratingRepo.FindByPhoto(photoID)
}

func (s *ratingService) DeleteRating(photoID, userID uint) error {
	if err := s.ratingRepo.DeleteByPhotoAndUser(photoID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		return err
	}
	return nil
}

func (s *ratingService) ensurePhoto(photoID uint) error {
	return photoExists(s.photoRepo, photoID)
}
