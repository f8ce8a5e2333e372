package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{tagService: tagService}
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListTags returns every tag ordered by name
// GET /api/tags, GET /api/tags/tags_all
func (ctrl *TagController) ListTags(c *gin.Context) {
	tags, err := ctrl.tagService.ListTags()
	if err != nil {
		respondError(c, err, "list tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags})
}

// GetTag GET /api/tags/:tag_id
func (ctrl *TagController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "tag_id")
	if !ok {
		return
	}

	tag, err := ctrl.tagService.GetTag(id)
	if err != nil {
		respondError(c, err, "get tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

// CreateTag POST /api/tags
func (ctrl *TagController) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Tag name is required")
		return
	}

	tag, err := ctrl.tagService.CreateTag(req.Name)
	if err != nil {
		respondError(c, err, "create tag")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Tag created", map[string]interface{}{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": tag})
}

// UpdateTag renames a tag
// PUT /api/tags/:tag_id
func (ctrl *TagController) UpdateTag(c *gin.Context) {
	id, ok := parseID(c, "tag_id")
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Tag name is required")
		return
	}

	tag, err := ctrl.tagService.UpdateTag(id, req.Name)
	if err != nil {
		respondError(c, err, "update tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

// DeleteTag DELETE /api/tags/:tag_id
func (ctrl *TagController) DeleteTag(c *gin.Context) {
	id, ok := parseID(c, "tag_id")
	if !ok {
		return
	}

	if err := ctrl.tagService.DeleteTag(id); err != nil {
		respondError(c, err, "delete tag")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	c.Status(http.StatusNoContent)
}
