package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/commenttree"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	logger            *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, logger *zap.Logger) *CommentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		logger:            logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.POST("/posts/:id/comments/:comment_id/reply", h.ReplyToComment)
	g.GET("/posts/:id/comments/:comment_id/replies", h.GetReplies)
	g.PUT("/comments/:comment_id", h.UpdateComment)
	g.DELETE("/comments/:comment_id", h.DeleteComment)
}

// GetCommentsByPostID returns the comment thread of a post, nested by reply
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	post, err := h.post(c)
	if err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByPostID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.decorate(comments); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	forest, err := commenttree.Build(comments)
	if err != nil {
		h.logger.Error("stored comments do not form a tree", zap.Uint("post_id", post.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Comment thread is corrupted")
	}
	return respond(c, http.StatusOK, nonNil(forest.Comments()))
}

// GetReplies returns the replies below a comment, nested by reply
func (h *CommentHandler) GetReplies(c echo.Context) error {
	parent, err := h.commentOfPost(c)
	if err != nil {
		return err
	}

	replies, err := h.commentRepository.GetDescendants(parent.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.decorate(replies); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	forest, err := commenttree.BuildReplies(parent.ID, replies)
	if err != nil {
		h.logger.Error("stored replies do not form a tree", zap.Uint("comment_id", parent.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Comment thread is corrupted")
	}
	return respond(c, http.StatusOK, nonNil(forest.Comments()))
}

// CreateComment adds a top-level comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.post(c)
	if err != nil {
		return err
	}

	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  v.ID,
		Content: req.Content,
	}
	return h.create(c, comment)
}

// ReplyToComment answers a comment of the post, addressed to a user
func (h *CommentHandler) ReplyToComment(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	var req models.ReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	parent, err := h.commentOfPost(c)
	if err != nil {
		return err
	}
	if _, err := h.userRepository.GetUserByID(req.ReplyToUserID); err != nil {
		return storeError(err, "User")
	}

	replyTo := req.ReplyToUserID
	comment := &models.Comment{
		PostID:        parent.PostID,
		UserID:        v.ID,
		ParentID:      &parent.ID,
		ReplyToUserID: &replyTo,
		Content:       req.Content,
	}
	return h.create(c, comment)
}

func (h *CommentHandler) create(c echo.Context, comment *models.Comment) error {
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := h.postRepository.AdjustCommentCount(c.Request().Context(), comment.PostID, 1); err != nil {
		h.logger.Warn("failed to increment comment count", zap.Uint("post_id", comment.PostID), zap.Error(err))
	}

	decorated := []models.Comment{*comment}
	if err := h.decorate(decorated); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, decorated[0])
}

// UpdateComment edits the body of the viewer's comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.comment(c)
	if err != nil {
		return err
	}
	if !v.CanEdit(comment.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	if req.Content != "" && req.Content != comment.Content {
		comment.Content = req.Content
		comment.Edited = true
	}
	if req.Edited != nil {
		comment.Edited = *req.Edited
	}
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	decorated := []models.Comment{*comment}
	if err := h.decorate(decorated); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, decorated[0])
}

// DeleteComment deletes a comment and every reply below it
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	comment, err := h.comment(c)
	if err != nil {
		return err
	}
	if !v.CanDelete(comment.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	removed, err := h.commentRepository.DeleteCommentTree(comment.ID)
	if err != nil {
		return storeError(err, "Comment")
	}
	if _, err := h.postRepository.AdjustCommentCount(c.Request().Context(), comment.PostID, -int(removed)); err != nil {
		h.logger.Warn("failed to decrement comment count", zap.Uint("post_id", comment.PostID), zap.Error(err))
	}
	return respondMessage(c, "Comment deleted successfully")
}

func (h *CommentHandler) post(c echo.Context) (*models.Post, error) {
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	return post, nil
}

func (h *CommentHandler) comment(c echo.Context) (*models.Comment, error) {
	commentID, err := idParam(c, "comment_id", "comment")
	if err != nil {
		return nil, err
	}
	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return nil, storeError(err, "Comment")
	}
	return comment, nil
}

// commentOfPost loads the comment parameter and checks it belongs to the post parameter.
func (h *CommentHandler) commentOfPost(c echo.Context) (*models.Comment, error) {
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return nil, err
	}
	comment, err := h.comment(c)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	return comment, nil
}

// decorate fills the author and addressee of each comment.
func (h *CommentHandler) decorate(comments []models.Comment) error {
	ids := make([]uint, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.UserID)
		if cm.ReplyToUserID != nil {
			ids = append(ids, *cm.ReplyToUserID)
		}
	}
	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return err
	}
	for i := range comments {
		if u, ok := users[comments[i].UserID]; ok {
			comments[i].User = u.Author()
		}
		if id := comments[i].ReplyToUserID; id != nil {
			if u, ok := users[*id]; ok {
				author := u.Author()
				comments[i].ReplyToUser = &author
			}
		}
	}
	return nil
}

func nonNil(cs []models.Comment) []models.Comment {
	if cs == nil {
		return []models.Comment{}
	}
	return cs
}
