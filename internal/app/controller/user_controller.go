package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type UserController struct {
	userService    service.UserService
	maxUploadBytes int64
}

func NewUserController(userService service.UserService, maxUploadBytes int64) *UserController {
	return &UserController{
		userService:    userService,
		maxUploadBytes: maxUploadBytes,
	}
}

type UpdateUserRequest struct {
	Username string `json:"username" binding:"omitempty,min=2,max=25"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=12"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type ChangeRoleRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Role  model.UserRole `json:"role" binding:"required"`
}

type BlockUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Block *bool  `json:"block" binding:"required"`
}

// Current returns the authenticated user
// GET /api/user/current
func (ctrl *UserController) Current(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.userService.GetByID(userID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// Update changes the username and/or email of the authenticated user
// PUT /api/user
func (ctrl *UserController) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile data")
		return
	}

	user, err := ctrl.userService.UpdateProfile(userID, req.Username, req.Email)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// UpdateAvatar replaces the avatar with the uploaded image
// PATCH /api/user/avatar
func (ctrl *UserController) UpdateAvatar(c *gin.Context) {
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

	user, err := ctrl.userService.UpdateAvatar(c.Request.Context(), userID, data)
	if err != nil {
		respondError(c, err, "upload avatar")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Avatar updated", map[string]interface{}{
		"user_id": userID,
	})
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// ChangePassword sets a new password for the authenticated user
// PATCH /api/user/reset_password
func (ctrl *UserController) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid password data")
		return
	}

	if err := ctrl.userService.ChangePassword(userID, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(c, err, "update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// Profile returns the public profile of a user
// GET /api/user/profile/:username
func (ctrl *UserController) Profile(c *gin.Context) {
	profile, err := ctrl.userService.GetProfile(c.Param("username"))
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// Photos lists the photos of the authenticated user
// GET /api/user/photos
func (ctrl *UserController) Photos(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	skip, limit := pagination(c)
	photos, total, err := ctrl.userService.ListPhotos(userID, skip, limit)
	if err != nil {
		respondError(c, err, "list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": photos, "total": total})
}

// Comments lists the comments of the authenticated user
// GET /api/user/comments
func (ctrl *UserController) Comments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	skip, limit := pagination(c)
	comments, total, err := ctrl.userService.ListComments(userID, skip, limit)
	if err != nil {
		respondError(c, err, "list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments, "total": total})
}

// All lists every user with activity counters
// GET /api/user/all
func (ctrl *UserController) All(c *gin.Context) {
	skip, limit := pagination(c)
	users, total, err := ctrl.userService.ListUsers(skip, limit)
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "total": total})
}

// Roles lists the role names
// GET /api/user/roles
func (ctrl *UserController) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": model.AllRoles})
}

// ChangeRole assigns a role to the user with the given email
// PATCH /api/user/change_role
func (ctrl *UserController) ChangeRole(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and role are required")
		return
	}

	user, err := ctrl.userService.ChangeRole(actorID, req.Email, req.Role)
	if err != nil {
		respondError(c, err, "update role")
		return
	}

	middleware.GetLoggerFromContext(c).Info("User role changed", map[string]interface{}{
		"actor_id": actorID,
		"user_id":  user.ID,
		"role":     user.Role,
	})
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// Block blocks or unblocks the user with the given email
// PATCH /api/user/block
func (ctrl *UserController) Block(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and block are required")
		return
	}

	user, err := ctrl.userService.SetBlocked(actorID, req.Email, *req.Block)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	middleware.GetLoggerFromContext(c).Info("User block state changed", map[string]interface{}{
		"actor_id": actorID,
		"user_id":  user.ID,
		"blocked":  user.Blocked,
	})
	c.JSON(http.StatusOK, gin.H{"data": user})
}
