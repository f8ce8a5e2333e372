package service

import (
	"context"
	"errors"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrSelfAction  = errors.New("operation not allowed on your own account")
	ErrInvalidRole = errors.New("invalid role")
)

type UserService interface {
	GetByID(id uint) (*model.User, error)
	GetProfile(username string) (*model.UserProfile, error)
	UpdateProfile(userID uint, username, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uint, data []byte) (*model.User, error)
	ChangePassword(userID uint, newPassword, confirmPassword string) error
	ListUsers(skip, limit int) ([]model.UserProfile, int64, error)
	ListPhotos(userID uint, skip, limit int) ([]model.Photo, int64, error)
	ListComments(userID uint, skip, limit int) ([]model.Comment, int64, error)
	ChangeRole(actorID uint, email string, role model.UserRole) (*model.User, error)
	SetBlocked(actorID uint, email string, blocked bool) (*model.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	photoRepo   repository.PhotoRepository
	commentRepo repository.CommentRepository
	storage     ImageStorage
}

func NewUserService(
	userRepo repository.UserRepository,
	photoRepo repository.PhotoRepository,
	commentRepo repository.CommentRepository,
	storage ImageStorage,
) UserService {
	return &userService{
		userRepo:    userRepo,
		photoRepo:   photoRepo,
		commentRepo: commentRepo,
		storage:     storage,
	}
}

func (s *userService) GetByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(username string) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.profile(user)
}

func (s *userService) profile(user *model.User) (*model.UserProfile, error) {
	photos, comments, err := s.userRepo.CountActivity(user.ID)
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{
		User:          *user,
		CountPhotos:   photos,
		CountComments: comments,
	}, nil
}

// UpdateProfile changes username and/or email; empty values are left alone
func (s *userService) UpdateProfile(userID uint, username, email string) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		if other, err := s.userRepo.FindByUsername(username); err == nil && other.ID != user.ID {
			return nil, ErrUsernameAlreadyExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = username
	}

	if email != "" && email != user.Email {
		if other, err := s.userRepo.FindByEmail(email); err == nil && other.ID != user.ID {
			return nil, ErrEmailAlreadyExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = email
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User profile updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// UpdateAvatar uploads a new avatar and drops the previous asset
func (s *userService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	data, contentType, err := prepareImage(data)
	if err != nil {
		return nil, err
	}

	asset, err := s.storage.Upload(ctx, model.FolderAvatars, data, contentType)
	if err != nil {
		logger.Error("Failed to upload avatar", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	previous := user.AvatarPublicID
	user.Avatar = asset.SecureURL
	user.AvatarPublicID = asset.PublicID
	if err := s.userRepo.Update(user); err != nil {
		deleteAssets(ctx, s.storage, asset.PublicID)
		return nil, err
	}
	deleteAssets(ctx, s.storage, previous)

	return user, nil
}

func (s *userService) ChangePassword(userID uint, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.userRepo.Update(user)
}

func (s *userService) ListUsers(skip, limit int) ([]model.UserProfile, int64, error) {
	total, err := s.userRepo.Count()
	if err != nil {
		return nil, 0, err
	}

	profiles, err := s.userRepo.FindAll(skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (s *userService) ListPhotos(userID uint, skip, limit int) ([]model.Photo, int64, error) {
	total, _, err := s.userRepo.CountActivity(userID)
	if err != nil {
		return nil, 0, err
	}
	photos, err := s.photoRepo.FindByOwner(userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

func (s *userService) ListComments(userID uint, skip, limit int) ([]model.Comment, int64, error) {
	_, total, err := s.userRepo.CountActivity(userID)
	if err != nil {
		return nil, 0, err
	}
	comments, err := s.commentRepo.FindByUser(userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *userService) ChangeRole(actorID uint, email string, role model.UserRole) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	target, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, ErrSelfAction
	}

	if err := s.userRepo.UpdateRole(target.ID, role); err != nil {
		return nil, err
	}
	target.Role = role

	logger.Info("User role changed", map[string]interface{}{
		"actor_id":  actorID,
		"target_id": target.ID,
		"role":      role,
	})
	return target, nil
}

func (s *userService) SetBlocked(actorID uint, email string, blocked bool) (*model.User, error) {
	target, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, ErrSelfAction
	}

	if err := s.userRepo.SetBlocked(target.ID, blocked); err != nil {
		return nil, err
	}
	target.Blocked = blocked
	if blocked {
		target.RefreshToken = nil
	}

	logger.Info("User blocked flag changed", map[string]interface{}{
		"actor_id":  actorID,
		"target_id": target.ID,
		"blocked":   blocked,
	})
	return target, nil
}

func (s *userService) findByEmail(email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
