package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/social/internal/models"
)

// PostService handles the post endpoints.
type PostService service

// List returns unarchived posts, newest first. A positive limit pages the result.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/posts", query: pagination(limit, offset)}, &posts)
	return posts, err
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", postID), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create publishes a post. image may be nil.
func (s *PostService) Create(ctx context.Context, req models.PostRequest, image *Upload) (*models.Post, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	fields := []formField{{"title", req.Title}, {"content", req.Content}}

	var post models.Post
	if err := s.client.doMultipart(ctx, http.MethodPost, "/posts", fields, "image", image, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update changes the fields set in req.
func (s *PostService) Update(ctx context.Context, postID uint, req models.UpdatePostRequest) (*models.Post, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var fields []formField
	if req.Title != "" {
		fields = append(fields, formField{"title", req.Title})
	}
	if req.Content != "" {
		fields = append(fields, formField{"content", req.Content})
	}
	if req.Archived != nil {
		fields = append(fields, formField{"archived", strconv.FormatBool(*req.Archived)})
	}
	if req.Edited != nil {
		fields = append(fields, formField{"edited", strconv.FormatBool(*req.Edited)})
	}

	var post models.Post
	if err := s.client.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", postID), fields, "", nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, postID uint) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil)
}

// Archive hides a post from listings.
func (s *PostService) Archive(ctx context.Context, postID uint) error {
	return s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d/archive", postID), nil, nil)
}

// Unarchive restores an archived post.
func (s *PostService) Unarchive(ctx context.Context, postID uint) error {
	return s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d/unarchive", postID), nil, nil)
}

// ByAuthor returns the posts of a user.
func (s *PostService) ByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.list(ctx, fmt.Sprintf("/posts/author/%d", authorID))
}

// Mine returns the posts of the signed-in user, archived ones included.
func (s *PostService) Mine(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, "/posts/author/me")
}

// Following returns the posts of the users the signed-in user follows.
func (s *PostService) Following(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, "/posts/following")
}

// LikedByMe returns the posts the signed-in user liked.
func (s *PostService) LikedByMe(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, "/posts/liked/me")
}

func (s *PostService) list(ctx context.Context, path string) ([]models.Post, error) {
	var posts []models.Post
	err := s.client.doJSON(ctx, http.MethodGet, path, nil, &posts)
	return posts, err
}
