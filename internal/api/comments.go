package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/commenttree"
	"github.com/anonto42/nano-midea/social/internal/models"
)

// CommentService handles the comment endpoints.
type CommentService service

// Tree returns the nested comments of a post.
func (s *CommentService) Tree(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, &comments)
	return comments, err
}

// Forest fetches the comments of a post and assembles them.
func (s *CommentService) Forest(ctx context.Context, postID uint) (commenttree.Forest, error) {
	comments, err := s.Tree(ctx, postID)
	if err != nil {
		return commenttree.Forest{}, err
	}
	return commenttree.Build(comments)
}

// Create adds a top-level comment to a post.
func (s *CommentService) Create(ctx context.Context, postID uint, req models.CommentRequest) (*models.Comment, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var c models.Comment
	if err := s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Reply answers the comment commentID, addressed to req.ReplyToUserID.
func (s *CommentService) Reply(ctx context.Context, postID, commentID uint, req models.ReplyRequest) (*models.Comment, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var c models.Comment
	path := fmt.Sprintf("/posts/%d/comments/%d/reply", postID, commentID)
	if err := s.client.doJSON(ctx, http.MethodPost, path, req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Replies returns the replies below a comment.
func (s *CommentService) Replies(ctx context.Context, postID, commentID uint) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/posts/%d/comments/%d/replies", postID, commentID)
	err := s.client.doJSON(ctx, http.MethodGet, path, nil, &comments)
	return comments, err
}

// Update edits a comment.
func (s *CommentService) Update(ctx context.Context, commentID uint, req models.UpdateCommentRequest) (*models.Comment, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var c models.Comment
	if err := s.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", commentID), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a comment and its replies.
func (s *CommentService) Delete(ctx context.Context, commentID uint) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil)
}
