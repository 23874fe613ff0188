package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	recorder       InteractionRecorder
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, recorder InteractionRecorder) *LikeHandler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		recorder:       recorder,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.GET("/posts/:id/like/status", h.GetLikeStatus)
}

// LikePost likes a post and answers with the new like count
func (h *LikeHandler) LikePost(c echo.Context) error {
	v, post, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.likeRepository.CreateLike(&models.Like{PostID: post.ID, UserID: v}); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			h.recorder.RecordInteraction("like", outcomeConflict)
			return echo.NewHTTPError(http.StatusConflict, "Post already liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.recorder.RecordInteraction("like", outcomeApplied)

	count, err := h.postRepository.AdjustLikeCount(c.Request().Context(), post.ID, 1)
	if err != nil {
		return storeError(err, "Post")
	}
	return respond(c, http.StatusOK, models.LikeStatus{IsLiked: true, LikeCount: &count})
}

// UnlikePost removes the viewer's like and answers with the new like count
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	v, post, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.likeRepository.DeleteLike(post.ID, v); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.recorder.RecordInteraction("unlike", outcomeConflict)
			return echo.NewHTTPError(http.StatusConflict, "Post not liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.recorder.RecordInteraction("unlike", outcomeApplied)

	count, err := h.postRepository.AdjustLikeCount(c.Request().Context(), post.ID, -1)
	if err != nil {
		return storeError(err, "Post")
	}
	return respond(c, http.StatusOK, models.LikeStatus{IsLiked: false, LikeCount: &count})
}

// GetLikeStatus reports whether the viewer likes a post, with its like count
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	v, post, err := h.target(c)
	if err != nil {
		return err
	}

	liked, err := h.likeRepository.HasUserLikedPost(post.ID, v)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	count := post.LikeCount
	return respond(c, http.StatusOK, models.LikeStatus{IsLiked: liked, LikeCount: &count})
}

func (h *LikeHandler) target(c echo.Context) (uint, *models.Post, error) {
	v, err := requireViewer(c)
	if err != nil {
		return 0, nil, err
	}
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return 0, nil, err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return 0, nil, storeError(err, "Post")
	}
	return v.ID, post, nil
}
