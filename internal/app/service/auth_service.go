package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("account already exists")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrInvalidEmail          = errors.New("invalid email")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrUserBlocked           = errors.New("user is blocked")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrInvalidResetToken     = errors.New("invalid reset token")
	ErrResetTokenUsed        = errors.New("reset token already used")
	ErrPasswordMismatch      = errors.New("passwords do not match")
)

type AuthService interface {
	Register(username, email, password string) (*model.User, error)
	Login(email, password string) (*util.TokenPair, error)
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, claims *util.Claims) error
	ForgotPassword(email string) (string, error)
	ResetPassword(resetToken, newPassword, confirmPassword string) error
}

type authService struct {
	userRepo      repository.UserRepository
	resetRepo     repository.PasswordResetRepository
	blacklist     TokenBlacklist
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	resetExpiry   time.Duration
}

// NewAuthService builds the auth service. blacklist may be nil when redis is off.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	blacklist TokenBlacklist,
	jwtSecret string,
	accessExpiry, refreshExpiry, resetExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		resetRepo:     resetRepo,
		blacklist:     blacklist,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		resetExpiry:   resetExpiry,
	}
}

func (s *authService) Register(username, email, password string) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"username": username,
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		logger.Warn("Registration failed: username already exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUsernameAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	// The first account administers the instance
	role := model.RoleUser
	count, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = model.RoleAdmin
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidEmail
		}
		return nil, err
	}

	if user.Blocked {
		logger.Warn("Login failed: user is blocked", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrUserBlocked
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, ErrInvalidPassword
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return tokens, nil
}

// RefreshToken rotates the token pair. A refresh token that is valid but no
// longer the stored one signals reuse, so the stored token is dropped.
func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateScopedToken(refreshToken, s.jwtSecret, util.ScopeRefresh)
	if err != nil {
		logger.Warn("Refresh failed: invalid token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		logger.Warn("Refresh failed: token does not match the stored one", map[string]interface{}{
			"user_id": user.ID,
		})
		if err := s.userRepo.UpdateRefreshToken(user.ID, nil); err != nil {
			return nil, err
		}
		return nil, ErrInvalidRefreshToken
	}

	if user.Blocked {
		return nil, ErrUserBlocked
	}

	return s.issueTokens(user)
}

// Logout forgets the refresh token and blacklists the presented access token
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if err := s.userRepo.UpdateRefreshToken(claims.UserID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.blacklist != nil && claims.ExpiresAt != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			logger.Error("Failed to blacklist access token", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			return err
		}
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

// ForgotPassword issues a one-time reset token for the account
func (s *authService) ForgotPassword(email string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	token, claims, err := util.GenerateToken(user.ID, user.Email, string(user.Role), util.ScopeReset, s.jwtSecret, s.resetExpiry)
	if err != nil {
		return "", err
	}

	reset := &model.PasswordReset{
		Email:     user.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return "", err
	}

	logger.Info("Password reset requested", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

func (s *authService) ResetPassword(resetToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	claims, err := util.ValidateScopedToken(resetToken, s.jwtSecret, util.ScopeReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	reset, err := s.resetRepo.FindByTokenID(claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if reset.Used {
		return ErrResetTokenUsed
	}
	if time.Now().After(reset.ExpiresAt) {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.RefreshToken = nil
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	if err := s.userRepo.UpdateRefreshToken(user.ID, &tokens.RefreshToken); err != nil {
		return nil, err
	}
	return tokens, nil
}
