package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrCommentEmpty       = errors.New("comment is empty")
	ErrCommentTooLong     = fmt.Errorf("comment is longer than %d characters", model.CommentMaxLength)
	ErrCommentRateLimited = errors.New("too many comments, slow down")
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, photoID uint, text string) (*model.Comment, error)
	ListComments(photoID uint) ([]model.Comment, error)
	EnsurePhoto(photoID uint) error
	UpdateComment(userID, commentID uint, text string) (*model.Comment, error)
	DeleteComment(actor Actor, commentID uint) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	photoRepo   repository.PhotoRepository
	limiter     RateLimiter
	notifier    CommentNotifier
}

// NewCommentService builds the comment service. limiter and notifier are optional.
func NewCommentService(
	commentRepo repository.CommentRepository,
	photoRepo repository.PhotoRepository,
	limiter RateLimiter,
	notifier CommentNotifier,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		photoRepo:   photoRepo,
		limiter:     limiter,
		notifier:    notifier,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, photoID uint, text string) (*model.Comment, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, strconv.FormatUint(uint64(userID), 10))
		if err != nil {
			// fail open, the limiter is best effort
			logger.Warn("Comment rate limiter unavailable", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if !allowed {
			logger.Warn("Comment rate limit exceeded", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrCommentRateLimited
		}
	}

	text, err := cleanComment(text)
	if err != nil {
		return nil, err
	}

	if err := s.EnsurePhoto(photoID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Comment: text,
		PhotoID: photoID,
		UserID:  userID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	logger.Info("Comment created", map[string]interface{}{
		"comment_id": comment.ID,
		"photo_id":   photoID,
		"user_id":    userID,
	})
	s.notify(CommentCreated, comment)
	return comment, nil
}

func (s *commentService) ListComments(photoID uint) ([]model.Comment, error) {
	if err := s.EnsurePhoto(photoID); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByPhoto(photoID)
}

// UpdateComment lets the author edit the text
func (s *commentService) UpdateComment(userID, commentID uint, text string) (*model.Comment, error) {
	text, err := cleanComment(text)
	if err != nil {
		return nil, err
	}

	comment, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	comment.Comment = text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	s.notify(CommentUpdated, comment)
	return comment, nil
}

// DeleteComment is reserved to moderators and admins
func (s *commentService) DeleteComment(actor Actor, commentID uint) error {
	if !actor.HasRole(model.RoleModerator, model.RoleAdmin) {
		return ErrForbidden
	}

	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	logger.Info("Comment deleted", map[string]interface{}{
		"comment_id": commentID,
		"actor_id":   actor.ID,
	})
	s.notify(CommentDeleted, comment)
	return nil
}

func (s *commentService) notify(event string, comment *model.Comment) {
	if s.notifier != nil {
		s.notifier.NotifyComment(comment.PhotoID, event, comment)
	}
}

// EnsurePhoto returns ErrPhotoNotFound unless the photo exists
func (s *commentService) EnsurePhoto(photoID uint) error {
	return photoExists(s.photoRepo, photoID)
}

func (s *commentService) findComment(id uint) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func cleanComment(text string) (string, error) {
	text = util.SanitizeHTML(text)
	if text == "" {
		return "", ErrCommentEmpty
	}
	if utf8.RuneCountInString(text) > model.CommentMaxLength {
		return "", ErrCommentTooLong
	}
	return text, nil
}
