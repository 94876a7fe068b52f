package models

import (
	"time"
)

// ReactionKind is the value stored for a user's reaction to a post.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is one of the known reaction kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction is a user's like/dislike on a post.
// (UserID, PostID) is the primary key, so a user has at most one reaction per post.
type Reaction struct {
	UserID    uint         `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint         `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	Action    ReactionKind `gorm:"column:action;not null;size:10" json:"action"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}

// TableName keeps the table name used by the SQL migrations.
func (Reaction) TableName() string {
	return "likes_dislikes"
}

// ReactionCounts is the per-post aggregate of reactions.
type ReactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}
