package model

import (
	"time"

	"github.com/samber/lo"
)

type UserRole string // role used for route gating

const (
	RoleUser      UserRole = "user"      // regular member
	RoleModerator UserRole = "moderator" // can edit photos and remove comments/ratings
	RoleAdmin     UserRole = "admin"     // full access, manages users
)

// AllRoles lists roles in ascending privilege order
var AllRoles = []UserRole{RoleUser, RoleModerator, RoleAdmin}

func (r UserRole) Valid() bool {
	return lo.Contains(AllRoles, r)
}

type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Username       string    `gorm:"type:varchar(25);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(20);default:'user';not null" json:"role"`
	Avatar         string    `gorm:"type:text" json:"avatar"`    // public URL of the avatar
	AvatarPublicID string    `gorm:"type:varchar(255)" json:"-"` // storage key of the avatar
	RefreshToken   *string   `gorm:"type:text" json:"-"`         // last issued refresh token
	Blocked        bool      `gorm:"not null;default:false" json:"blocked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile is a user with activity counters
type UserProfile struct {
	User
	CountPhotos   int64 `json:"count_photos"`
	CountComments int64 `json:"count_comments"`
}
