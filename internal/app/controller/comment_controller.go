package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
	ws "github.com/ikkim/photoshare-backend/internal/websocket"
	"github.com/samber/lo"
)

type CommentController struct {
	commentService service.CommentService
	hub            *ws.Hub
	upgrader       websocket.Upgrader
}

// NewCommentController builds the controller. allowedOrigins gates the
// websocket handshake; a request without an Origin header is accepted.
func NewCommentController(commentService service.CommentService, hub *ws.Hub, allowedOrigins []string) *CommentController {
	return &CommentController{
		commentService: commentService,
		hub:            hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || lo.Contains(allowedOrigins, "*") || lo.Contains(allowedOrigins, origin)
			},
		},
	}
}

type CreateCommentRequest struct {
	PhotoID uint   `json:"photo_id" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

type UpdateCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// Create adds a comment to a photo
// POST /api/comments
func (ctrl *CommentController) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "photo_id and comment are required")
		return
	}

	comment, err := ctrl.commentService.CreateComment(c.Request.Context(), userID, req.PhotoID, req.Comment)
	if err != nil {
		respondError(c, err, "create comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": comment})
}

// ListByPhoto returns the comments of a photo, oldest first
// GET /api/comments/:photo_id
func (ctrl *CommentController) ListByPhoto(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	comments, err := ctrl.commentService.ListComments(photoID)
	if err != nil {
		respondError(c, err, "list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

// Update edits the text of the caller's own comment
// PUT /api/comments/:comment_id
func (ctrl *CommentController) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Comment is required")
		return
	}

	comment, err := ctrl.commentService.UpdateComment(userID, commentID, req.Comment)
	if err != nil {
		respondError(c, err, "update comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comment})
}

// Delete removes a comment
// DELETE /api/comments/:comment_id
func (ctrl *CommentController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	if err := ctrl.commentService.DeleteComment(actor, commentID); err != nil {
		respondError(c, err, "delete comment")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Comment deleted", map[string]interface{}{
		"comment_id": commentID,
		"actor_id":   actor.ID,
	})
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a websocket carrying the comment events of a photo.
// Anonymous viewers are allowed.
// GET /api/photos/:photo_id/comments/ws
func (ctrl *CommentController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}
	if err := ctrl.commentService.EnsurePhoto(photoID); err != nil {
		respondError(c, err, "subscribe comments")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"photo_id": photoID,
			"error":    err.Error(),
		})
		return
	}

	userID, _ := middleware.GetUserID(c)
	ctrl.hub.Serve(conn, photoID, userID)

	log.Info("Comment stream opened", map[string]interface{}{
		"photo_id": photoID,
		"user_id":  userID,
	})
}
