package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
	posts             postDecorator
	uploadDir         string
	logger            *zap.Logger
}

// NewPostHandler creates a new PostHandler. Images are stored in uploadDir.
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
	uploadDir string,
	logger *zap.Logger,
) *PostHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
		posts:             postDecorator{users: userRepo, likes: likeRepo},
		uploadDir:         uploadDir,
		logger:            logger,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/author/me", h.GetMyPosts)
	g.GET("/posts/author/:id", h.GetPostsByAuthor)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PATCH("/posts/:id/archive", h.ArchivePost)
	g.PATCH("/posts/:id/unarchive", h.UnarchivePost)
}

// CreatePost publishes a post from a multipart form with an optional image
func (h *PostHandler) CreatePost(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}

	var req models.PostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, err := saveUpload(c, "image", h.uploadDir)
	if err != nil {
		return err
	}

	post := &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Image:    image,
		AuthorID: v.ID,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.posts.decorateOne(v.ID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID. Archived posts are visible to their author only.
func (h *PostHandler) GetPost(c echo.Context) error {
	v := currentViewer(c)
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return storeError(err, "Post")
	}
	if post.Archived && !v.IsSelf(post.AuthorID) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err := h.posts.decorateOne(v.ID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, post)
}

// GetPosts lists unarchived posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	offset, limit := page(c)
	return h.list(c, repositories.PostQuery{Offset: offset, Limit: limit})
}

// GetPostsByAuthor lists the unarchived posts of a user
func (h *PostHandler) GetPostsByAuthor(c echo.Context) error {
	authorID, err := idParam(c, "id", "user")
	if err != nil {
		return err
	}
	offset, limit := page(c)
	return h.list(c, repositories.PostQuery{AuthorIDs: []uint{authorID}, Offset: offset, Limit: limit})
}

// GetMyPosts lists the viewer's posts, archived ones included
func (h *PostHandler) GetMyPosts(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	offset, limit := page(c)
	return h.list(c, repositories.PostQuery{AuthorIDs: []uint{v.ID}, IncludeArchived: true, Offset: offset, Limit: limit})
}

func (h *PostHandler) list(c echo.Context, q repositories.PostQuery) error {
	posts, err := h.postRepository.FindPosts(c.Request().Context(), q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	posts, err = h.posts.decorate(currentViewer(c).ID, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, posts)
}

// UpdatePost changes the fields present in the multipart form
func (h *PostHandler) UpdatePost(c echo.Context) error {
	post, err := h.ownPost(c, "update")
	if err != nil {
		return err
	}

	req := models.UpdatePostRequest{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Content: strings.TrimSpace(c.FormValue("content")),
	}
	if req.Archived, err = formBool(c, "archived"); err != nil {
		return err
	}
	if req.Edited, err = formBool(c, "edited"); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	changed := false
	if req.Title != "" && req.Title != post.Title {
		post.Title = req.Title
		changed = true
	}
	if req.Content != "" && req.Content != post.Content {
		post.Content = req.Content
		changed = true
	}
	if req.Archived != nil {
		post.Archived = *req.Archived
	}
	if image, err := saveUpload(c, "image", h.uploadDir); err != nil {
		return err
	} else if image != "" {
		post.Image = image
		changed = true
	}
	switch {
	case req.Edited != nil:
		post.Edited = *req.Edited
	case changed:
		post.Edited = true
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return storeError(err, "Post")
	}
	if err := h.posts.decorateOne(post.AuthorID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, post)
}

// DeletePost deletes a post with its comments and likes. Admins may delete any post.
func (h *PostHandler) DeletePost(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return storeError(err, "Post")
	}
	if !v.CanDelete(post.AuthorID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return storeError(err, "Post")
	}
	if err := h.commentRepository.DeleteCommentsByPostID(postID); err != nil {
		h.logger.Warn("failed to delete comments of deleted post", zap.Uint("post_id", postID), zap.Error(err))
	}
	if err := h.likeRepository.DeleteLikesByPostID(postID); err != nil {
		h.logger.Warn("failed to delete likes of deleted post", zap.Uint("post_id", postID), zap.Error(err))
	}
	return respondMessage(c, "Post deleted successfully")
}

// ArchivePost hides a post from public listings
func (h *PostHandler) ArchivePost(c echo.Context) error {
	return h.setArchived(c, true)
}

// UnarchivePost restores an archived post
func (h *PostHandler) UnarchivePost(c echo.Context) error {
	return h.setArchived(c, false)
}

func (h *PostHandler) setArchived(c echo.Context, archived bool) error {
	post, err := h.ownPost(c, "archive")
	if err != nil {
		return err
	}
	post.Archived = archived
	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return storeError(err, "Post")
	}
	if archived {
		return respondMessage(c, "Post archived successfully")
	}
	return respondMessage(c, "Post unarchived successfully")
}

// ownPost loads the post named by the id parameter and checks the viewer wrote it.
func (h *PostHandler) ownPost(c echo.Context, action string) (*models.Post, error) {
	v, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	if !v.CanEdit(post.AuthorID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not authorized to "+action+" this post")
	}
	return post, nil
}

func formBool(c echo.Context, name string) (*bool, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid value for "+name)
	}
	return &b, nil
}
