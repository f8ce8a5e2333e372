package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=2,max=25"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=12"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// loginForm is the OAuth2 password grant body, the email travels as "username"
type loginForm struct {
	Username string `form:"username" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	ResetToken      string `json:"reset_token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=12"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Signup handles user registration
// POST /api/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid signup data")
		return
	}

	user, err := ctrl.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		log.Warn("Signup failed", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		respondError(c, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    user,
	})
}

// Login accepts a JSON body or an OAuth2 password form
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var email, password string
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		var form loginForm
		if err := c.ShouldBind(&form); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login data")
			return
		}
		email, password = form.Username, form.Password
	default:
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login data")
			return
		}
		email, password = req.Email, req.Password
	}

	tokens, err := ctrl.authService.Login(email, password)
	if err != nil {
		log.Warn("Login failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		respondError(c, err, "login")
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"email": email,
	})
	c.JSON(http.StatusOK, tokens)
}

// RefreshToken exchanges the refresh token in the Authorization header for a new pair
// GET /api/auth/refresh_token
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		apperrors.Unauthorized(c, "Refresh token is required")
		return
	}

	tokens, err := ctrl.authService.RefreshToken(token)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Refresh token rejected", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(c, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout revokes the current access token
// GET /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "logout")
		return
	}

	middleware.GetLoggerFromContext(c).Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	c.Status(http.StatusNoContent)
}

// ForgotPassword issues a reset token for the given account
// POST /api/auth/forget_password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A valid email is required")
		return
	}

	token, err := ctrl.authService.ForgotPassword(req.Email)
	if err != nil {
		respondError(c, err, "forgot password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reset_token": token,
	})
}

// ResetPassword sets a new password using a reset token
// POST /api/auth/reset_password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid password reset data")
		return
	}

	if err := ctrl.authService.ResetPassword(req.ResetToken, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset",
	})
}
