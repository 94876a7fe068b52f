package models

import (
	"time"
)

// Post represents a post in the feed.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	Postname string `gorm:"column:postname;not null;size:255" json:"postname"`
	Content  string `gorm:"type:text;not null" json:"content"`
	// Image is the stored upload filename, empty when the post has none.
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// PostView is a post joined with its author's username and reaction totals.
type PostView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Postname  string    `json:"postname"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Likes and Dislikes are computed on read from likes_dislikes.
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}
