package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag already exists")
	ErrInvalidTagName   = errors.New("invalid tag name")
	ErrTooManyTags      = fmt.Errorf("a photo can have at most %d tags", model.MaxTagsPerPhoto)
)

type TagService interface {
	ListTags() ([]model.Tag, error)
	GetTag(id uint) (*model.Tag, error)
	CreateTag(name string) (*model.Tag, error)
	UpdateTag(id uint, name string) (*model.Tag, error)
	DeleteTag(id uint) error
}

type tagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// ListTags returns every tag ordered by name
func (s *tagService) ListTags() ([]model.Tag, error) {
	return s.tagRepo.FindAll()
}

func (s *tagService) GetTag(id uint) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *tagService) CreateTag(name string) (*model.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(name, 0); err != nil {
		return nil, err
	}

	tag := &model.Tag{Name: name}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}

	logger.Info("Tag created", map[string]interface{}{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})
	return tag, nil
}

func (s *tagService) UpdateTag(id uint, name string) (*model.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}

	tag, err := s.GetTag(id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(name, id); err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.tagRepo.Update(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) DeleteTag(id uint) error {
	if err := s.tagRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	logger.Info("Tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	return nil
}

func (s *tagService) ensureUnique(name string, selfID uint) error {
	existing, err := s.tagRepo.FindByName(name)
	if err == nil && existing.ID != selfID {
		return ErrTagAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func normalizeTagName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if n := utf8.RuneCountInString(name); n < model.TagNameMinLength || n > model.TagNameMaxLength {
		return "", fmt.Errorf("%w: %q must be %d to %d characters", ErrInvalidTagName, name, model.TagNameMinLength, model.TagNameMaxLength)
	}
	return name, nil
}

// normalizeTagList cleans raw form values into at most MaxTagsPerPhoto valid names
func normalizeTagList(raw []string) ([]string, error) {
	names := util.NormalizeTagNames(raw)
	if len(names) > model.MaxTagsPerPhoto {
		return nil, ErrTooManyTags
	}
	for _, name := range names {
		if _, err := normalizeTagName(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}
