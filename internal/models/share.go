package models

import "time"

// Share records a user sharing a post. Shares are append-only.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	SharedTo  *string   `gorm:"size:255" json:"shared_to"`
	CreatedAt time.Time `json:"created_at"`
}
