package controller

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *testAPI {
	api := setupAPI(t)
	ctrl := NewAuthController(api.authService)

	auth := api.engine.Group("/auth")
	auth.POST("/signup", ctrl.Signup)
	auth.POST("/login", ctrl.Login)
	auth.GET("/refresh_token", ctrl.RefreshToken)
	auth.GET("/logout", api.auth.Authenticate(), ctrl.Logout)
	auth.POST("/forget_password", ctrl.ForgotPassword)
	auth.POST("/reset_password", ctrl.ResetPassword)

	// a protected route to observe token revocation
	api.engine.GET("/me", api.auth.Authenticate(), func(c *gin.Context) {})
	return api
}

func TestAuthController_Signup(t *testing.T) {
	api := setupAuthControllerTest(t)

	w := api.doJSON(http.MethodPost, "/auth/signup", SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := dataOf(t, w)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, string(model.RoleAdmin), user["role"], "first account becomes admin")
	assert.NotContains(t, user, "password_hash")

	w = api.doJSON(http.MethodPost, "/auth/signup", SignupRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, string(model.RoleUser), dataOf(t, w)["role"])
}

func TestAuthController_Signup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		req    SignupRequest
		status int
		code   string
	}{
		{"invalid email", SignupRequest{"alice", "not-an-email", "password123"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"short password", SignupRequest{"alice", "alice@example.com", "short"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"long password", SignupRequest{"alice", "alice@example.com", "much-too-long-password"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"short username", SignupRequest{"a", "alice@example.com", "password123"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := setupAuthControllerTest(t)
			w := api.doJSON(http.MethodPost, "/auth/signup", tt.req, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthController_Signup_Conflicts(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	w := api.doJSON(http.MethodPost, "/auth/signup", SignupRequest{
		Username: "someone",
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperrors.AuthEmailAlreadyExists, body["error"])
	assert.Equal(t, "Account already exists", body["message"])

	w = api.doJSON(http.MethodPost, "/auth/signup", SignupRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.AuthUsernameExists, decodeBody(t, w)["error"])
}

func TestAuthController_Login_JSON(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	w := api.doJSON(http.MethodPost, "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: testPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
}

func TestAuthController_Login_Form(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	form := url.Values{"username": {"alice@example.com"}, "password": {testPassword}}
	w := api.do(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody(t, w)["access_token"])
}

func TestAuthController_Login_Failures(t *testing.T) {
	api := setupAuthControllerTest(t)
	blocked, _ := api.createUser(t, "mallory", model.RoleUser)
	require.NoError(t, api.users.SetBlocked(blocked.ID, true))
	api.createUser(t, "alice", model.RoleUser)

	tests := []struct {
		name    string
		email   string
		code    string
		message string
	}{
		{"unknown email", "nobody@example.com", apperrors.AuthInvalidEmail, "Invalid email"},
		{"blocked user", "mallory@example.com", apperrors.AuthUserBlocked, "User is blocked"},
		{"wrong password", "alice@example.com", apperrors.AuthInvalidPassword, "Invalid password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password := testPassword
			if tt.code == apperrors.AuthInvalidPassword {
				password = "wrong-password"
			}
			w := api.doJSON(http.MethodPost, "/auth/login", LoginRequest{Email: tt.email, Password: password}, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestAuthController_RefreshToken(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	tokens, err := api.authService.Login("alice@example.com", testPassword)
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/auth/refresh_token", nil, "", tokens.RefreshToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decodeBody(t, w)
	assert.NotEqual(t, tokens.RefreshToken, rotated["refresh_token"])

	// the old refresh token was replaced, reusing it is rejected
	w = api.do(http.MethodGet, "/auth/refresh_token", nil, "", tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// an access token has the wrong scope
	w = api.do(http.MethodGet, "/auth/refresh_token", nil, "", tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/auth/refresh_token", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Logout_RevokesAccessToken(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	tokens, err := api.authService.Login("alice@example.com", testPassword)
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/me", nil, "", tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/auth/logout", nil, "", tokens.AccessToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/me", nil, "", tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthTokenRevoked, decodeBody(t, w)["error"])

	w = api.do(http.MethodGet, "/auth/refresh_token", nil, "", tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout clears the stored refresh token")
}

func TestAuthController_PasswordReset(t *testing.T) {
	api := setupAuthControllerTest(t)
	api.createUser(t, "alice", model.RoleUser)

	w := api.doJSON(http.MethodPost, "/auth/forget_password", ForgotPasswordRequest{Email: "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.doJSON(http.MethodPost, "/auth/forget_password", ForgotPasswordRequest{Email: "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resetToken, _ := decodeBody(t, w)["reset_token"].(string)
	require.NotEmpty(t, resetToken)

	claims, err := util.ValidateScopedToken(resetToken, testJWTSecret, util.ScopeReset)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	w = api.doJSON(http.MethodPost, "/auth/reset_password", ResetPasswordRequest{
		ResetToken:      resetToken,
		NewPassword:     "newpass123",
		ConfirmPassword: "different1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthPasswordMismatch, decodeBody(t, w)["error"])

	w = api.doJSON(http.MethodPost, "/auth/reset_password", ResetPasswordRequest{
		ResetToken:      resetToken,
		NewPassword:     "newpass123",
		ConfirmPassword: "newpass123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.doJSON(http.MethodPost, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "newpass123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.doJSON(http.MethodPost, "/auth/reset_password", ResetPasswordRequest{
		ResetToken:      resetToken,
		NewPassword:     "another123",
		ConfirmPassword: "another123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthResetTokenUsed, decodeBody(t, w)["error"])
}
