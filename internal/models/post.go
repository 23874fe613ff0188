package models

import "time"

// Post represents a post. It is stored either in PostgreSQL or, when configured, in MongoDB.
type Post struct {
	ID           uint           `json:"id" gorm:"primaryKey" bson:"_id"`
	Title        string         `json:"title" bson:"title"`
	Content      string         `json:"content" bson:"content"`
	Image        string         `json:"image" bson:"image,omitempty"`
	Archived     bool           `json:"archived" gorm:"index" bson:"archived"`
	Edited       bool           `json:"edited" bson:"edited"`
	AuthorID     uint           `json:"author_id" gorm:"index" bson:"author_id"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"-" bson:"updated_at"`
	LikeCount    int            `json:"like_count" bson:"like_count"`
	CommentCount int            `json:"comment_count" bson:"comment_count"`
	Author       AuthorResponse `json:"author" gorm:"-" bson:"-"`
	IsLiked      bool           `json:"is_liked" gorm:"-" bson:"-"`
}

// PostRequest defines the fields of a new post. The optional image travels as a separate multipart part.
type PostRequest struct {
	Title   string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" form:"content" validate:"required,min=1,max=5000"`
}

// UpdatePostRequest defines the updatable post fields. Nil or empty fields are left unchanged.
type UpdatePostRequest struct {
	Title    string `json:"title,omitempty" form:"title" validate:"omitempty,max=200"`
	Content  string `json:"content,omitempty" form:"content" validate:"omitempty,max=5000"`
	Archived *bool  `json:"archived,omitempty" form:"archived"`
	Edited   *bool  `json:"edited,omitempty" form:"edited"`
}
