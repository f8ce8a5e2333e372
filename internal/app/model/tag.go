package model

import (
	"time"
)

// Tag is a lower-case label shared between photos
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(25);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

const (
	TagNameMinLength = 3
	TagNameMaxLength = 25
	MaxTagsPerPhoto  = 5
)
