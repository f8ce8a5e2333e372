package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DownloadURLTTL is the lifetime of presigned download links
const DownloadURLTTL = 15 * time.Minute

var (
	ErrPhotoNotFound = errors.New("photo not found")
	ErrForbidden     = errors.New("operation not permitted")
	ErrTitleRequired = errors.New("title is required")
)

// Actor is the authenticated caller of a permission-checked operation
type Actor struct {
	ID   uint
	Role model.UserRole
}

// HasRole reports whether the actor holds one of roles
func (a Actor) HasRole(roles ...model.UserRole) bool {
	return lo.Contains(roles, a.Role)
}

// CanModify reports whether the actor owns the resource or holds one of roles
func (a Actor) CanModify(ownerID uint, roles ...model.UserRole) bool {
	return a.ID == ownerID || a.HasRole(roles...)
}

type CreatePhotoInput struct {
	Title       string
	Description string
	Tags        []string
	File        []byte
}

// UpdatePhotoInput holds optional changes; nil fields are left as they are
type UpdatePhotoInput struct {
	Title       *string
	Description *string
	Tags        []string
	File        []byte
}

type PhotoService interface {
	ListPhotos(query string, skip, limit int) ([]model.Photo, int64, error)
	GetPhoto(id uint) (*model.PhotoDetails, error)
	CreatePhoto(ctx context.Context, ownerID uint, input CreatePhotoInput) (*model.Photo, error)
	UpdatePhoto(ctx context.Context, actor Actor, id uint, input UpdatePhotoInput) (*model.Photo, error)
	DeletePhoto(ctx context.Context, actor Actor, id uint) error
	DownloadURL(ctx context.Context, id uint) (string, error)
}

type photoService struct {
	photoRepo  repository.PhotoRepository
	tagRepo    repository.TagRepository
	ratingRepo repository.RatingRepository
	storage    ImageStorage
}

func NewPhotoService(
	photoRepo repository.PhotoRepository,
	tagRepo repository.TagRepository,
	ratingRepo repository.RatingRepository,
	storage ImageStorage,
) PhotoService {
	return &photoService{
		photoRepo:  photoRepo,
		tagRepo:    tagRepo,
		ratingRepo: ratingRepo,
		storage:    storage,
	}
}

func (s *photoService) ListPhotos(query string, skip, limit int) ([]model.Photo, int64, error) {
	return s.photoRepo.FindAll(query, skip, limit)
}

func (s *photoService) GetPhoto(id uint) (*model.PhotoDetails, error) {
	photo, err := s.findPhoto(id)
	if err != nil {
		return nil, err
	}

	summary, err := s.ratingRepo.Summary(id)
	if err != nil {
		return nil, err
	}

	return &model.PhotoDetails{
		Photo:       *photo,
		Rating:      summary.Rating,
		RatingCount: summary.Count,
	}, nil
}

func (s *photoService) CreatePhoto(ctx context.Context, ownerID uint, input CreatePhotoInput) (*model.Photo, error) {
	logger.Info("Creating photo", map[string]interface{}{
		"owner_id": ownerID,
		"bytes":    len(input.File),
	})

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	names, err := normalizeTagList(input.Tags)
	if err != nil {
		return nil, err
	}

	data, contentType, err := prepareImage(input.File)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.FindOrCreate(names)
	if err != nil {
		return nil, err
	}

	asset, err := s.storage.Upload(ctx, model.FolderPhotos, data, contentType)
	if err != nil {
		logger.Error("Failed to upload photo", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}

	photo := &model.Photo{
		Title:       title,
		Description: util.SanitizeHTML(input.Description),
		OwnerID:     ownerID,
		PublicID:    asset.PublicID,
		SecureURL:   asset.SecureURL,
		Folder:      asset.Folder,
		Tags:        tags,
	}
	if err := s.photoRepo.Create(photo); err != nil {
		deleteAssets(ctx, s.storage, asset.PublicID)
		return nil, err
	}

	logger.Info("Photo created", map[string]interface{}{
		"photo_id":  photo.ID,
		"public_id": photo.PublicID,
		"tags":      names,
	})
	return s.findPhoto(photo.ID)
}

// UpdatePhoto is allowed for the owner, moderators and admins
func (s *photoService) UpdatePhoto(ctx context.Context, actor Actor, id uint, input UpdatePhotoInput) (*model.Photo, error) {
	photo, err := s.findPhoto(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(photo.OwnerID, model.RoleModerator, model.RoleAdmin) {
		return nil, ErrForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		photo.Title = title
	}
	if input.Description != nil {
		photo.Description = util.SanitizeHTML(*input.Description)
	}

	var tags []model.Tag
	if input.Tags != nil {
		names, err := normalizeTagList(input.Tags)
		if err != nil {
			return nil, err
		}
		if tags, err = s.tagRepo.FindOrCreate(names); err != nil {
			return nil, err
		}
	}

	var replaced string
	if input.File != nil {
		data, contentType, err := prepareImage(input.File)
		if err != nil {
			return nil, err
		}
		asset, err := s.storage.Upload(ctx, model.FolderPhotos, data, contentType)
		if err != nil {
			return nil, err
		}
		replaced = photo.PublicID
		photo.PublicID = asset.PublicID
		photo.SecureURL = asset.SecureURL
	}

	if err := s.photoRepo.Update(photo, tags); err != nil {
		if replaced != "" {
			deleteAssets(ctx, s.storage, photo.PublicID)
		}
		return nil, err
	}
	deleteAssets(ctx, s.storage, replaced)

	logger.Info("Photo updated", map[string]interface{}{
		"photo_id": photo.ID,
		"actor_id": actor.ID,
	})
	return s.findPhoto(id)
}

// DeletePhoto is allowed for the owner and admins. Stored assets of the
// photo, its transformations and their QR codes are removed first.
func (s *photoService) DeletePhoto(ctx context.Context, actor Actor, id uint) error {
	photo, err := s.findPhoto(id)
	if err != nil {
		return err
	}
	if !actor.CanModify(photo.OwnerID, model.RoleAdmin) {
		return ErrForbidden
	}

	assets := []string{photo.PublicID}
	for _, t := range photo.Transformations {
		assets = append(assets, t.PublicID)
		if t.QrCode != nil {
			assets = append(assets, t.QrCode.PublicID)
		}
	}
	deleteAssets(ctx, s.storage, assets...)

	if err := s.photoRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		return err
	}

	logger.Info("Photo deleted", map[string]interface{}{
		"photo_id": id,
		"actor_id": actor.ID,
		"assets":   len(assets),
	})
	return nil
}

func (s *photoService) DownloadURL(ctx context.Context, id uint) (string, error) {
	photo, err := s.findPhoto(id)
	if err != nil {
		return "", err
	}
	return s.storage.PresignGet(ctx, photo.PublicID, DownloadURLTTL)
}

func (s *photoService) findPhoto(id uint) (*model.Photo, error) {
	photo, err := s.photoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return photo, nil
}

// photoExists checks a photo id without loading its associations
func photoExists(photoRepo repository.PhotoRepository, id uint) error {
	ok, err := photoRepo.Exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPhotoNotFound
	}
	return nil
}
