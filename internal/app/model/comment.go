package model

import (
	"time"
)

const CommentMaxLength = 500

type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Comment   string    `gorm:"type:varchar(500);not null" json:"comment"`
	PhotoID   uint      `gorm:"not null;index" json:"photo_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

func (Comment) TableName() string {
	return "comments"
}
