package model

import (
	"time"
)

// Storage folders, one per kind of asset
const (
	FolderPhotos          = "photos"
	FolderTransformations = "transformations"
	FolderQrCodes         = "qrcodes"
	FolderAvatars         = "user_avatar"
)

type Photo struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(150);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	PublicID    string    `gorm:"type:varchar(255);not null" json:"public_id"` // object key on the image host
	SecureURL   string    `gorm:"type:text;not null" json:"secure_url"`
	Folder      string    `gorm:"type:varchar(50);not null;default:'photos'" json:"folder"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner           User             `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner"`
	Tags            []Tag            `gorm:"many2many:photo_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tags"`
	Transformations []Transformation `gorm:"foreignKey:PhotoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"transformations"`
	Comments        []Comment        `gorm:"foreignKey:PhotoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"comments"`
	Ratings         []Rating         `gorm:"foreignKey:PhotoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Photo) TableName() string {
	return "photos"
}

// PhotoDetails is a photo together with its average rating
type PhotoDetails struct {
	Photo
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}
