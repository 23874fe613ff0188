package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
)

// postDecorator fills the author and the viewer's like flag of posts.
type postDecorator struct {
	users repositories.UserRepository
	likes repositories.LikeRepository
}

func (d postDecorator) decorate(viewerID uint, posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return []models.Post{}, nil
	}
	authorIDs := make([]uint, 0, len(posts))
	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		postIDs = append(postIDs, p.ID)
	}

	authors, err := d.users.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	liked, err := d.likes.FilterLiked(viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if a, ok := authors[posts[i].AuthorID]; ok {
			posts[i].Author = a.Author()
		}
		posts[i].IsLiked = liked[posts[i].ID]
	}
	return posts, nil
}

func (d postDecorator) decorateOne(viewerID uint, post *models.Post) error {
	out, err := d.decorate(viewerID, []models.Post{*post})
	if err != nil {
		return err
	}
	*post = out[0]
	return nil
}

// FeedHandler serves the personal post listings of the signed-in user
type FeedHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	likeRepository   repositories.LikeRepository
	posts            postDecorator
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
		likeRepository:   likeRepo,
		posts:            postDecorator{users: userRepo, likes: likeRepo},
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/following", h.GetFollowingFeed)
	g.GET("/posts/liked/me", h.GetLikedPosts)
}

// GetFollowingFeed returns the posts of the users the viewer follows
func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(v.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(followingIDs) == 0 {
		return respond(c, http.StatusOK, []models.Post{})
	}

	offset, limit := page(c)
	posts, err := h.postRepository.FindPosts(c.Request().Context(), repositories.PostQuery{
		AuthorIDs: followingIDs,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.reply(c, v.ID, posts)
}

// GetLikedPosts returns the posts the viewer liked
func (h *FeedHandler) GetLikedPosts(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}

	likedIDs, err := h.likeRepository.GetLikedPostIDs(v.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(likedIDs) == 0 {
		return respond(c, http.StatusOK, []models.Post{})
	}

	posts, err := h.postRepository.FindPosts(c.Request().Context(), repositories.PostQuery{IDs: likedIDs})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.reply(c, v.ID, posts)
}

func (h *FeedHandler) reply(c echo.Context, viewerID uint, posts []models.Post) error {
	posts, err := h.posts.decorate(viewerID, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, posts)
}
