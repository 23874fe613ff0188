package models

import "time"

// Comment represents a comment on a post.
//
// ParentID is the comment's position in the thread; ReplyToUser is the user the
// comment is addressed to. The two are independent and may name different users.
type Comment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	PostID        uint            `json:"post_id" gorm:"index"`
	UserID        uint            `json:"-" gorm:"index"`
	ParentID      *uint           `json:"parent_id,omitempty" gorm:"index"`
	ReplyToUserID *uint           `json:"-"`
	Content       string          `json:"content"`
	Edited        bool            `json:"edited"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"-"`
	User          AuthorResponse  `json:"user" gorm:"-"`
	ReplyToUser   *AuthorResponse `json:"reply_to_user,omitempty" gorm:"-"`
	Replies       []Comment       `json:"replies,omitempty" gorm:"-"`
}

// CommentRequest defines the request body for creating a top-level comment
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// ReplyRequest defines the request body for replying to a comment
type ReplyRequest struct {
	Content       string `json:"content" validate:"required,min=1,max=500"`
	ReplyToUserID uint   `json:"reply_to_user_id" validate:"required"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,min=1,max=500"`
	Edited  *bool  `json:"edited,omitempty"`
}
