package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

type RatePhotoRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// Rate sets the caller's rating for a photo
// POST /api/rating/:photo_id
func (ctrl *RatingController) Rate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	var req RatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating is required")
		return
	}

	rating, err := ctrl.ratingService.RatePhoto(userID, photoID, req.Rating)
	if err != nil {
		respondError(c, err, "rate photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

// Summary returns the average rating of a photo
// GET /api/rating/:photo_id
func (ctrl *RatingController) Summary(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	summary, err := ctrl.ratingService.GetSummary(photoID)
	if err != nil {
		respondError(c, err, "get rating")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// List GET /api/rating/:photo_id/all
func (ctrl *RatingController) List(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	ratings, err := ctrl.ratingService.ListRatings(photoID)
	if err != nil {
		respondError(c, err, "list ratings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ratings})
}

// DeleteOwn removes the caller's rating
// DELETE /api/rating/:photo_id
func (ctrl *RatingController) DeleteOwn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	if err := ctrl.ratingService.DeleteRating(photoID, userID); err != nil {
		respondError(c, err, "delete rating")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteForUser removes another user's rating
// DELETE /api/rating/:photo_id/users/:user_id
func (ctrl *RatingController) DeleteForUser(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	if err := ctrl.ratingService.DeleteRating(photoID, userID); err != nil {
		respondError(c, err, "delete rating")
		return
	}

	actorID, _ := middleware.GetUserID(c)
	middleware.GetLoggerFromContext(c).Info("Rating removed by moderator", map[string]interface{}{
		"photo_id": photoID,
		"user_id":  userID,
		"actor_id": actorID,
	})
	c.Status(http.StatusNoContent)
}
