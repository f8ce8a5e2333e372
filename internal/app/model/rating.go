package model

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's score for one photo
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	PhotoID   uint      `gorm:"not null;uniqueIndex:idx_ratings_photo_user" json:"photo_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_photo_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingSummary is the aggregate over a photo's ratings
type RatingSummary struct {
	PhotoID uint    `json:"photo_id"`
	Rating  float64 `json:"rating"`
	Count   int64   `json:"count"`
}
