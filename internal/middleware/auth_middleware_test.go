package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r[tokenID], nil
}

// userTable stands in for the user repository
type userTable map[uint]*model.User

func (u userTable) FindByID(id uint) (*model.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func testUsers() userTable {
	return userTable{
		1: {ID: 1, Email: "test@example.com", Role: model.RoleUser},
		2: {ID: 2, Email: "mod@example.com", Role: model.RoleModerator},
		3: {ID: 3, Email: "admin@example.com", Role: model.RoleAdmin},
		4: {ID: 4, Email: "blocked@example.com", Role: model.RoleAdmin, Blocked: true},
	}
}

func setupMiddlewareTest(revoked RevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	middleware := NewAuthMiddleware(testJWTSecret, testUsers(), revoked)
	return router, middleware
}

func generateTestToken(t *testing.T, userID uint, email, role string) string {
	tokens, err := util.GenerateTokenPair(
		userID,
		email,
		role,
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)
	token := generateTestToken(t, 1, "test@example.com", "user")

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		claims, ok := GetClaims(c)

		assert.True(t, ok)
		assert.NotEmpty(t, claims.ID)

		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"role":    role,
		})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":1,"role":"user"}`, w.Body.String())
}

func TestAuthMiddleware_Authenticate_RoleFromDatabase(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/role", authMiddleware.Authenticate(), func(c *gin.Context) {
		role, _ := GetUserRole(c)
		c.String(http.StatusOK, string(role))
	})

	tests := []struct {
		name      string
		userID    uint
		claimRole string
		want      model.UserRole
	}{
		{name: "Demoted admin", userID: 1, claimRole: "admin", want: model.RoleUser},
		{name: "Promoted user", userID: 3, claimRole: "user", want: model.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/role", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, tt.userID, "x@example.com", tt.claimRole))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, string(tt.want), w.Body.String())
		})
	}
}

func TestAuthMiddleware_Authenticate_UnavailableUser(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name     string
		userID   uint
		wantCode string
	}{
		{name: "Deleted user", userID: 99, wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Blocked user", userID: 4, wantCode: "AUTH_USER_BLOCKED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, tt.userID, "x@example.com", "admin"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestAuthMiddleware_Authenticate_IgnoresQueryToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)
	token := generateTestToken(t, 1, "test@example.com", "user")

	router.GET("/photos", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/photos?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "Missing Bearer prefix",
			header: "invalid-token",
		},
		{
			name:   "Wrong prefix",
			header: "Basic token123",
		},
		{
			name:   "Empty token",
			header: "Bearer ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_InvalidToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	expired, _, err := util.GenerateToken(1, "a@example.com", "user", util.ScopeAccess, testJWTSecret, -time.Minute)
	require.NoError(t, err)
	refresh, _, err := util.GenerateToken(1, "a@example.com", "user", util.ScopeRefresh, testJWTSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{name: "Garbage", token: "invalid.jwt.token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Expired", token: expired, wantCode: "AUTH_TOKEN_EXPIRED"},
		{name: "Refresh token used as access token", token: refresh, wantCode: "AUTH_TOKEN_SCOPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestAuthMiddleware_Authenticate_Revoked(t *testing.T) {
	token, _, err := util.GenerateToken(1, "a@example.com", "user", util.ScopeAccess, testJWTSecret, time.Hour)
	require.NoError(t, err)
	revokedToken, revokedClaims, err := util.GenerateToken(1, "a@example.com", "user", util.ScopeAccess, testJWTSecret, time.Hour)
	require.NoError(t, err)

	router, authMiddleware := setupMiddlewareTest(revokedSet{revokedClaims.ID: true})
	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+revokedToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_REVOKED")

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/moderation",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleAdmin, model.RoleModerator),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "access granted"})
		},
	)

	tests := []struct {
		name       string
		userID     uint
		wantStatus int
	}{
		{name: "Admin", userID: 3, wantStatus: http.StatusOK},
		{name: "Moderator", userID: 2, wantStatus: http.StatusOK},
		{name: "User", userID: 1, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/moderation", nil)
			// the claimed role is ignored, the stored one decides
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, tt.userID, "x@example.com", "admin"))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRole_NoAuth(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest(nil)

	router.GET("/admin", authMiddleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	revokedToken, revokedClaims, err := util.GenerateToken(1, "a@example.com", "user", util.ScopeAccess, testJWTSecret, time.Hour)
	require.NoError(t, err)
	router, authMiddleware := setupMiddlewareTest(revokedSet{revokedClaims.ID: true})

	router.GET("/maybe", authMiddleware.OptionalAuthenticate(), func(c *gin.Context) {
		_, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	valid := generateTestToken(t, 3, "x@example.com", "user")
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{name: "Guest", want: `"authenticated":false`},
		{name: "Bad token", header: "Bearer nope", want: `"authenticated":false`},
		{name: "Valid", header: "Bearer " + valid, want: `"authenticated":true`},
		{name: "Valid query token", query: "?token=" + valid, want: `"authenticated":true`},
		{name: "Bad query token", query: "?token=nope", want: `"authenticated":false`},
		{name: "Revoked", header: "Bearer " + revokedToken, want: `"authenticated":false`},
		{name: "Blocked user", header: "Bearer " + generateTestToken(t, 4, "x@example.com", "admin"), want: `"authenticated":false`},
		{name: "Deleted user", header: "Bearer " + generateTestToken(t, 99, "x@example.com", "user"), want: `"authenticated":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/maybe"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}
