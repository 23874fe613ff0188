package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_like_post_user"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_like_post_user"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeStatus is the confirmed like state of a post for the current viewer.
// LikeCount is the authoritative like count when the server reports it.
type LikeStatus struct {
	IsLiked   bool `json:"is_liked"`
	LikeCount *int `json:"like_count,omitempty"`
}
