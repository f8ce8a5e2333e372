package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/imageproc"
)

type TransformationController struct {
	transformationService service.TransformationService
}

func NewTransformationController(transformationService service.TransformationService) *TransformationController {
	return &TransformationController{
		transformationService: transformationService,
	}
}

type CreateTransformationRequest struct {
	Title string `json:"title" binding:"max=150"`
	imageproc.Options
}

// Create renders a transformation of a photo
// POST /api/photos/:photo_id/transformations
func (ctrl *TransformationController) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	var req CreateTransformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid transformation data")
		return
	}

	t, err := ctrl.transformationService.CreateTransformation(c.Request.Context(), actor, photoID, req.Title, req.Options)
	if err != nil {
		respondError(c, err, "create transformation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": t})
}

// ListByPhoto lists the transformations of a photo
// GET /api/photos/:photo_id/transformations
func (ctrl *TransformationController) ListByPhoto(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	list, err := ctrl.transformationService.ListTransformations(photoID)
	if err != nil {
		respondError(c, err, "list transformations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Get GET /api/transformations/:id
func (ctrl *TransformationController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := ctrl.transformationService.GetTransformation(id)
	if err != nil {
		respondError(c, err, "get transformation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": t})
}

// Delete DELETE /api/transformations/:id
func (ctrl *TransformationController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.transformationService.DeleteTransformation(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "delete transformation")
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateQrCode renders the QR code of a transformation, 200 when it already exists
// POST /api/transformations/:id/qrcode
func (ctrl *TransformationController) CreateQrCode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	qr, created, err := ctrl.transformationService.CreateQrCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "create qr code")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": qr})
}

// GetQrCode GET /api/transformations/:id/qrcode
func (ctrl *TransformationController) GetQrCode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	qr, err := ctrl.transformationService.GetQrCode(id)
	if err != nil {
		respondError(c, err, "get qr code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": qr})
}
