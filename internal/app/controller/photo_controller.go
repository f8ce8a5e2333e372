package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type PhotoController struct {
	photoService   service.PhotoService
	maxUploadBytes int64
}

func NewPhotoController(photoService service.PhotoService, maxUploadBytes int64) *PhotoController {
	return &PhotoController{
		photoService:   photoService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UpdatePhotoRequest is the JSON form of a photo update; absent fields are kept
type UpdatePhotoRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// List returns a page of photos, optionally filtered by title or tag
// GET /api/photos
func (ctrl *PhotoController) List(c *gin.Context) {
	skip, limit := pagination(c)
	query := strings.TrimSpace(c.Query("query"))

	photos, total, err := ctrl.photoService.ListPhotos(query, skip, limit)
	if err != nil {
		respondError(c, err, "list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  photos,
		"total": total,
	})
}

// Get returns a photo with its relations and average rating
// GET /api/photos/:photo_id
func (ctrl *PhotoController) Get(c *gin.Context) {
	id, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	photo, err := ctrl.photoService.GetPhoto(id)
	if err != nil {
		respondError(c, err, "get photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": photo})
}

// Create uploads a new photo
// POST /api/photos
func (ctrl *PhotoController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	data, ok := readUpload(c, "file", ctrl.maxUploadBytes)
	if !ok {
		return
	}
	if data == nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "File is required")
		return
	}

	photo, err := ctrl.photoService.CreatePhoto(c.Request.Context(), userID, service.CreatePhotoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostFormArray("tags"),
		File:        data,
	})
	if err != nil {
		log.Warn("Photo upload failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondError(c, err, "upload photo")
		return
	}

	log.Info("Photo uploaded", map[string]interface{}{
		"photo_id":  photo.ID,
		"public_id": photo.PublicID,
	})
	c.JSON(http.StatusCreated, gin.H{"data": photo})
}

// Update changes the title, description, tags or file of a photo
// PUT /api/photos/:photo_id
func (ctrl *PhotoController) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	var input service.UpdatePhotoInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if !parseUploadForm(c, ctrl.maxUploadBytes) {
			return
		}
		if title, present := c.GetPostForm("title"); present {
			input.Title = &title
		}
		if description, present := c.GetPostForm("description"); present {
			input.Description = &description
		}
		if tags, present := c.GetPostFormArray("tags"); present {
			input.Tags = tags
		}
		data, ok := readUpload(c, "file", ctrl.maxUploadBytes)
		if !ok {
			return
		}
		input.File = data
	} else {
		var req UpdatePhotoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid photo data")
			return
		}
		input.Title = req.Title
		input.Description = req.Description
		input.Tags = req.Tags
	}

	photo, err := ctrl.photoService.UpdatePhoto(c.Request.Context(), actor, id, input)
	if err != nil {
		respondError(c, err, "update photo")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Photo updated", map[string]interface{}{
		"photo_id":     photo.ID,
		"actor_id":     actor.ID,
		"file_changed": input.File != nil,
	})
	c.JSON(http.StatusOK, gin.H{"data": photo})
}

// Delete removes a photo and its assets
// DELETE /api/photos/:photo_id
func (ctrl *PhotoController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	if err := ctrl.photoService.DeletePhoto(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "delete photo")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Photo deleted", map[string]interface{}{
		"photo_id": id,
		"actor_id": actor.ID,
	})
	c.Status(http.StatusNoContent)
}

// Download returns a presigned link to the original image
// GET /api/photos/:photo_id/download
func (ctrl *PhotoController) Download(c *gin.Context) {
	id, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	url, err := ctrl.photoService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "download photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"url":        url,
			"expires_in": int(service.DownloadURLTTL.Seconds()),
		},
	})
}
