package repository

import (
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	Count() (int64, error)
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindAll(skip, limit int) ([]model.UserProfile, error)
	Update(user *model.User) error
	UpdateRefreshToken(id uint, token *string) error
	UpdateRole(id uint, role model.UserRole) error
	SetBlocked(id uint, blocked bool) error
	CountActivity(id uint) (photos int64, comments int64, err error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email":    user.Email,
		"username": user.Username,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users in database", err)
		return 0, err
	}
	return count, nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		logger.Error("Failed to find user by username in database", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}
	return &user, nil
}

// FindAll pages through users together with their photo and comment counts
func (r *userRepository) FindAll(skip, limit int) ([]model.UserProfile, error) {
	photos := r.db.Model(&model.Photo{}).
		Select("owner_id, COUNT(*) AS total").
		Group("owner_id")
	comments := r.db.Model(&model.Comment{}).
		Select("user_id, COUNT(*) AS total").
		Group("user_id")

	var profiles []model.UserProfile
	err := r.db.Model(&model.User{}).
		Select("users.*, COALESCE(p.total, 0) AS count_photos, COALESCE(c.total, 0) AS count_comments").
		Joins("LEFT JOIN (?) AS p ON p.owner_id = users.id", photos).
		Joins("LEFT JOIN (?) AS c ON c.user_id = users.id", comments).
		Order("users.id ASC").
		Offset(skip).
		Limit(limit).
		Scan(&profiles).Error
	if err != nil {
		logger.Error("Failed to list users in database", err, map[string]interface{}{
			"skip":  skip,
			"limit": limit,
		})
		return nil, err
	}
	return profiles, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Debug("User updated in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// UpdateRefreshToken stores the latest refresh token, nil clears it
func (r *userRepository) UpdateRefreshToken(id uint, token *string) error {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("refresh_token", token)
	if result.Error != nil {
		logger.Error("Failed to update refresh token in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateRole(id uint, role model.UserRole) error {
	logger.Debug("Updating user role in database", map[string]interface{}{
		"user_id": id,
		"role":    role,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		logger.Error("Failed to update user role in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetBlocked flips the blocked flag. Blocking also drops the stored refresh
// token so the user cannot renew a session.
func (r *userRepository) SetBlocked(id uint, blocked bool) error {
	logger.Debug("Updating user blocked flag in database", map[string]interface{}{
		"user_id": id,
		"blocked": blocked,
	})

	updates := map[string]interface{}{"blocked": blocked}
	if blocked {
		updates["refresh_token"] = nil
	}

	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update user blocked flag in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountActivity returns how many photos and comments the user has posted
func (r *userRepository) CountActivity(id uint) (int64, int64, error) {
	var photos, comments int64

	if err := r.db.Model(&model.Photo{}).Where("owner_id = ?", id).Count(&photos).Error; err != nil {
		logger.Error("Failed to count user photos", err, map[string]interface{}{
			"user_id": id,
		})
		return 0, 0, err
	}
	if err := r.db.Model(&model.Comment{}).Where("user_id = ?", id).Count(&comments).Error; err != nil {
		logger.Error("Failed to count user comments", err, map[string]interface{}{
			"user_id": id,
		})
		return 0, 0, err
	}

	return photos, comments, nil
}
