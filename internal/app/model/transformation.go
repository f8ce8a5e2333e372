package model

import (
	"time"
)

// Transformation is a derived image rendered from a photo
type Transformation struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	PhotoID    uint       `gorm:"not null;index" json:"photo_id"`
	Title      string     `gorm:"type:varchar(150);not null" json:"title"`
	PublicID   string     `gorm:"type:varchar(255);not null" json:"public_id"`
	SecureURL  string     `gorm:"type:text;not null" json:"secure_url"`
	Folder     string     `gorm:"type:varchar(50);not null;default:'transformations'" json:"folder"`
	Operations StringList `json:"operations"` // applied steps, e.g. "resize:300x200:fill"
	CreatedAt  time.Time  `json:"created_at"`

	QrCode *QrCode `gorm:"foreignKey:TransformationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"qr_code,omitempty"`
}

func (Transformation) TableName() string {
	return "transformations"
}

// QrCode encodes the URL of a transformation
type QrCode struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	TransformationID uint      `gorm:"not null;uniqueIndex" json:"transformation_id"`
	Title            string    `gorm:"type:varchar(150);not null" json:"title"`
	PublicID         string    `gorm:"type:varchar(255);not null" json:"public_id"`
	SecureURL        string    `gorm:"type:text;not null" json:"secure_url"`
	Folder           string    `gorm:"type:varchar(50);not null;default:'qrcodes'" json:"folder"`
	CreatedAt        time.Time `json:"created_at"`
}

func (QrCode) TableName() string {
	return "qr_codes"
}
