package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/internal/imageproc"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTransformationNotFound = errors.New("transformation not found")
	ErrTransformationEmpty    = errors.New("no transformation requested")
	ErrInvalidTransformation  = errors.New("invalid transformation")
	ErrQrCodeNotFound         = errors.New("qr code not found")
)

type TransformationService interface {
	CreateTransformation(ctx context.Context, actor Actor, photoID uint, title string, opts imageproc.Options) (*model.Transformation, error)
	ListTransformations(photoID uint) ([]model.Transformation, error)
	GetTransformation(id uint) (*model.Transformation, error)
	DeleteTransformation(ctx context.Context, actor Actor, id uint) error
	CreateQrCode(ctx context.Context, id uint) (*model.QrCode, bool, error)
	GetQrCode(id uint) (*model.QrCode, error)
}

type transformationService struct {
	transformationRepo repository.TransformationRepository
	photoRepo          repository.PhotoRepository
	storage            ImageStorage
}

func NewTransformationService(
	transformationRepo repository.TransformationRepository,
	photoRepo repository.PhotoRepository,
	storage ImageStorage,
) TransformationService {
	return &transformationService{
		transformationRepo: transformationRepo,
		photoRepo:          photoRepo,
		storage:            storage,
	}
}

// CreateTransformation renders a derived image from the stored original.
// Owners, moderators and admins may do this.
func (s *transformationService) CreateTransformation(ctx context.Context, actor Actor, photoID uint, title string, opts imageproc.Options) (*model.Transformation, error) {
	if err := opts.Validate(); err != nil {
		if errors.Is(err, imageproc.ErrNoOperations) {
			return nil, ErrTransformationEmpty
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransformation, err)
	}

	photo, err := s.findPhoto(photoID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(photo.OwnerID, model.RoleModerator, model.RoleAdmin) {
		return nil, ErrForbidden
	}

	original, err := s.storage.Download(ctx, photo.PublicID)
	if err != nil {
		logger.Error("Failed to download original photo", err, map[string]interface{}{
			"photo_id":  photo.ID,
			"public_id": photo.PublicID,
		})
		return nil, err
	}

	rendered, contentType, err := imageproc.Transform(original, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransformation, err)
	}

	asset, err := s.storage.Upload(ctx, model.FolderTransformations, rendered, contentType)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title == "" {
		title = photo.Title
	}
	t := &model.Transformation{
		PhotoID:    photo.ID,
		Title:      title,
		PublicID:   asset.PublicID,
		SecureURL:  asset.SecureURL,
		Folder:     asset.Folder,
		Operations: opts.Operations(),
	}
	if err := s.transformationRepo.Create(t); err != nil {
		deleteAssets(ctx, s.storage, asset.PublicID)
		return nil, err
	}

	logger.Info("Transformation created", map[string]interface{}{
		"transformation_id": t.ID,
		"photo_id":          photo.ID,
		"operations":        t.Operations,
	})
	return t, nil
}

func (s *transformationService) ListTransformations(photoID uint) ([]model.Transformation, error) {
	if _, err := s.findPhoto(photoID); err != nil {
		return nil, err
	}
	return s.transformationRepo.FindByPhoto(photoID)
}

func (s *transformationService) GetTransformation(id uint) (*model.Transformation, error) {
	t, err := s.transformationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransformationNotFound
		}
		return nil, err
	}
	return t, nil
}

// DeleteTransformation is allowed for the photo owner and admins
func (s *transformationService) DeleteTransformation(ctx context.Context, actor Actor, id uint) error {
	t, err := s.GetTransformation(id)
	if err != nil {
		return err
	}
	photo, err := s.findPhoto(t.PhotoID)
	if err != nil {
		return err
	}
	if !actor.CanModify(photo.OwnerID, model.RoleAdmin) {
		return ErrForbidden
	}

	assets := []string{t.PublicID}
	if t.QrCode != nil {
		assets = append(assets, t.QrCode.PublicID)
	}
	deleteAssets(ctx, s.storage, assets...)

	if err := s.transformationRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransformationNotFound
		}
		return err
	}
	return nil
}

// CreateQrCode renders a QR code for the transformation URL. The second
// result is false when the code already existed.
func (s *transformationService) CreateQrCode(ctx context.Context, id uint) (*model.QrCode, bool, error) {
	t, err := s.GetTransformation(id)
	if err != nil {
		return nil, false, err
	}
	if t.QrCode != nil {
		return t.QrCode, false, nil
	}

	png, err := imageproc.QRCode(t.SecureURL)
	if err != nil {
		return nil, false, err
	}

	asset, err := s.storage.Upload(ctx, model.FolderQrCodes, png, "image/png")
	if err != nil {
		return nil, false, err
	}

	qr := &model.QrCode{
		TransformationID: t.ID,
		Title:            t.Title,
		PublicID:         asset.PublicID,
		SecureURL:        asset.SecureURL,
		Folder:           asset.Folder,
	}
	if err := s.transformationRepo.CreateQrCode(qr); err != nil {
		deleteAssets(ctx, s.storage, asset.PublicID)
		return nil, false, err
	}

	logger.Info("QR code created", map[string]interface{}{
		"transformation_id": t.ID,
		"qr_code_id":        qr.ID,
	})
	return qr, true, nil
}

func (s *transformationService) GetQrCode(id uint) (*model.QrCode, error) {
	if _, err := s.GetTransformation(id); err != nil {
		return nil, err
	}
	qr, err := s.transformationRepo.FindQrCode(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQrCodeNotFound
		}
		return nil, err
	}
	return qr, nil
}

func (s *transformationService) findPhoto(id uint) (*model.Photo, error) {
	photo, err := s.photoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return photo, nil
}
