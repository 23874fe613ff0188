package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the authorization role carried by a user and its session token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a registered account
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:30"`
	Email          string    `json:"email" gorm:"uniqueIndex"`
	Bio            string    `json:"bio"`
	Avatar         string    `json:"avatar"`
	Role           Role      `json:"role,omitempty" gorm:"size:10;default:user"`
	Password       string    `json:"-"`                                         // bcrypt hash
	FirebaseUID    *string   `json:"-" gorm:"uniqueIndex"`                      // set when the account was created through Firebase
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	IsFollowed     bool      `json:"is_followed" gorm:"-"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// Author returns the compact author view of the user.
func (u *User) Author() AuthorResponse {
	return AuthorResponse{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// AuthorResponse is the compact user shape embedded in posts, comments and follow lists
type AuthorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// RegisterRequest defines the request body for creating a local account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for signing in with email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful sign in
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// FirebaseLoginRequest exchanges a verified Firebase identity for an application token
type FirebaseLoginRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
}

// UpdateProfileRequest defines the updatable profile fields. Empty fields are left unchanged.
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" form:"username" validate:"omitempty,min=3,max=30,alphanum"`
	Bio      string `json:"bio,omitempty" form:"bio" validate:"omitempty,max=160"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
