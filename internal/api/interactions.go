package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
)

// LikeService handles the like endpoints.
type LikeService service

// Like likes a post. The returned status may be nil if the server sent no data.
func (s *LikeService) Like(ctx context.Context, postID uint) (*models.LikeStatus, error) {
	return s.send(ctx, http.MethodPost, postID)
}

// Unlike removes the like of the signed-in user from a post.
func (s *LikeService) Unlike(ctx context.Context, postID uint) (*models.LikeStatus, error) {
	return s.send(ctx, http.MethodDelete, postID)
}

// Status reports whether the signed-in user likes a post.
func (s *LikeService) Status(ctx context.Context, postID uint) (*models.LikeStatus, error) {
	var st models.LikeStatus
	if err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/like/status", postID), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *LikeService) send(ctx context.Context, method string, postID uint) (*models.LikeStatus, error) {
	var st *models.LikeStatus
	if err := s.client.doJSON(ctx, method, fmt.Sprintf("/posts/%d/like", postID), nil, &st); err != nil {
		return nil, err
	}
	return st, nil
}

// FollowService handles the follow endpoints.
type FollowService service

// Follow makes the signed-in user follow userID.
func (s *FollowService) Follow(ctx context.Context, userID uint) (*models.FollowStatus, error) {
	return s.send(ctx, http.MethodPost, userID)
}

// Unfollow removes the follow edge to userID.
func (s *FollowService) Unfollow(ctx context.Context, userID uint) (*models.FollowStatus, error) {
	return s.send(ctx, http.MethodDelete, userID)
}

// Followers returns the users following the signed-in user.
func (s *FollowService) Followers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.client.doJSON(ctx, http.MethodGet, "/users/followers", nil, &users)
	return users, err
}

// Followings returns the users the signed-in user follows.
func (s *FollowService) Followings(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.client.doJSON(ctx, http.MethodGet, "/users/followings", nil, &users)
	return users, err
}

func (s *FollowService) send(ctx context.Context, method string, userID uint) (*models.FollowStatus, error) {
	var st *models.FollowStatus
	if err := s.client.doJSON(ctx, method, fmt.Sprintf("/follow/%d", userID), nil, &st); err != nil {
		return nil, err
	}
	return st, nil
}
