package model

import (
	"time"
)

// PasswordReset tracks issued reset tokens so each one works only once
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	TokenID   string    `gorm:"size:64;not null;uniqueIndex" json:"-"` // jti of the reset JWT
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
