package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Context keys for user information
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
	ClaimsKey   = "token_claims"
)

// TokenQueryParam carries the access token on websocket upgrades, where
// browsers cannot set an Authorization header
const TokenQueryParam = "token"

// RevocationChecker reports whether an access token was revoked at logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserLookup loads the account a token was issued to
type UserLookup interface {
	FindByID(id uint) (*model.User, error)
}

type AuthMiddleware struct {
	jwtSecret string
	users     UserLookup
	revoked   RevocationChecker
}

// NewAuthMiddleware builds the middleware. Every authenticated request
// reloads the user so role changes and blocks apply immediately. revoked may
// be nil, in which case logged-out tokens stay valid until they expire.
func NewAuthMiddleware(jwtSecret string, users UserLookup, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		users:     users,
		revoked:   revoked,
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Authenticate validates an access token from the Authorization header (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if c.GetHeader("Authorization") == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "Authorization header is required")
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := util.ValidateScopedToken(token, m.jwtSecret, util.ScopeAccess)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
			case errors.Is(err, util.ErrInvalidScope):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenScope, "Invalid scope for token")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid or expired token")
			}
			return
		}

		if m.isRevoked(c, claims) {
			log.Warn("Revoked token used", map[string]interface{}{
				"user_id": claims.UserID,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Token has been revoked")
			return
		}

		user, err := m.users.FindByID(claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Token issued to unknown user", map[string]interface{}{
					"user_id": claims.UserID,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "User no longer exists")
				return
			}
			log.Error("Failed to load authenticated user", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			apperrors.InternalError(c, "")
			return
		}
		if user.Blocked {
			log.Warn("Blocked user rejected", map[string]interface{}{
				"user_id": user.ID,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthUserBlocked, "User is blocked")
			return
		}

		setIdentity(c, claims, user)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate sets the user when a valid access token is present
// and continues as a guest otherwise. The token may also come from the
// "token" query parameter, for websocket clients.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			token = c.Query(TokenQueryParam)
		}
		if token == "" {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		claims, err := util.ValidateScopedToken(token, m.jwtSecret, util.ScopeAccess)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if m.isRevoked(c, claims) {
			c.Next()
			return
		}

		user, err := m.users.FindByID(claims.UserID)
		if err != nil || user.Blocked {
			log.Debug("Token user unavailable - continuing as guest", map[string]interface{}{
				"user_id": claims.UserID,
			})
			c.Next()
			return
		}

		setIdentity(c, claims, user)
		c.Next()
	}
}

// isRevoked consults the blacklist. A lookup failure is logged and the token
// is treated as live.
func (m *AuthMiddleware) isRevoked(c *gin.Context, claims *util.Claims) bool {
	if m.revoked == nil {
		return false
	}
	revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		GetLoggerFromContext(c).Error("Token blacklist lookup failed", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return false
	}
	return revoked
}

// RequireRole lets the request through when the user holds one of roles
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "Role information not found")
			return
		}

		if lo.Contains(roles, role) {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.Forbidden(c, "Operation not permitted")
	}
}

// setIdentity stores the caller. The role comes from the database row, not
// the token, so a demotion takes effect on the next request.
func setIdentity(c *gin.Context, claims *util.Claims, user *model.User) {
	c.Set(UserIDKey, user.ID)
	c.Set(UserRoleKey, user.Role)
	c.Set(ClaimsKey, claims)
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetClaims returns the validated access token claims
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
