package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var bob = viewer.Viewer{ID: 2, Username: "bob", Role: models.RoleUser}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env models.Envelope[T]
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success)
	return env.Data
}

func httpStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	msg, _ := he.Message.(string)
	return he.Code, msg
}

func TestLikePostReturnsAuthoritativeCount(t *testing.T) {
	likes := new(MockLikeRepository)
	posts := new(MockPostRepository)
	recorder := new(MockRecorder)
	h := NewLikeHandler(likes, posts, recorder)

	posts.On("GetPostByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10, LikeCount: 4}, nil)
	likes.On("CreateLike", &models.Like{PostID: 10, UserID: bob.ID}).Return(nil)
	posts.On("AdjustLikeCount", mock.Anything, uint(10), 1).Return(5, nil)
	recorder.On("RecordInteraction", "like", outcomeApplied).Return()

	c, rec := newContext(http.MethodPost, "/posts/10/like", "", bob, map[string]string{"id": "10"})
	require.NoError(t, h.LikePost(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	status := decodeData[models.LikeStatus](t, rec.Body.Bytes())
	assert.True(t, status.IsLiked)
	require.NotNil(t, status.LikeCount)
	assert.Equal(t, 5, *status.LikeCount)
	mock.AssertExpectationsForObjects(t, likes, posts, recorder)
}

func TestLikePostTwiceConflicts(t *testing.T) {
	likes := new(MockLikeRepository)
	posts := new(MockPostRepository)
	recorder := new(MockRecorder)
	h := NewLikeHandler(likes, posts, recorder)

	posts.On("GetPostByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10}, nil)
	likes.On("CreateLike", mock.Anything).Return(repositories.ErrDuplicate)
	recorder.On("RecordInteraction", "like", outcomeConflict).Return()

	c, _ := newContext(http.MethodPost, "/posts/10/like", "", bob, map[string]string{"id": "10"})
	code, msg := httpStatus(t, h.LikePost(c))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Post already liked", msg)
	posts.AssertNotCalled(t, "AdjustLikeCount", mock.Anything, mock.Anything, mock.Anything)
	recorder.AssertExpectations(t)
}

func TestUnlikeNotLikedConflicts(t *testing.T) {
	likes := new(MockLikeRepository)
	posts := new(MockPostRepository)
	h := NewLikeHandler(likes, posts, nil)

	posts.On("GetPostByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10}, nil)
	likes.On("DeleteLike", uint(10), bob.ID).Return(repositories.ErrNotFound)

	c, _ := newContext(http.MethodDelete, "/posts/10/like", "", bob, map[string]string{"id": "10"})
	code, msg := httpStatus(t, h.UnlikePost(c))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Post not liked", msg)
}

func TestLikeRequiresViewerAndValidPost(t *testing.T) {
	posts := new(MockPostRepository)
	h := NewLikeHandler(new(MockLikeRepository), posts, nil)

	c, _ := newContext(http.MethodPost, "/posts/10/like", "", viewer.Anonymous, map[string]string{"id": "10"})
	code, _ := httpStatus(t, h.LikePost(c))
	assert.Equal(t, http.StatusUnauthorized, code)

	c, _ = newContext(http.MethodPost, "/posts/x/like", "", bob, map[string]string{"id": "x"})
	code, _ = httpStatus(t, h.LikePost(c))
	assert.Equal(t, http.StatusBadRequest, code)

	posts.On("GetPostByID", mock.Anything, uint(99)).Return(nil, repositories.ErrNotFound)
	c, _ = newContext(http.MethodPost, "/posts/99/like", "", bob, map[string]string{"id": "99"})
	code, msg := httpStatus(t, h.LikePost(c))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Post not found", msg)
}

func TestFollowUser(t *testing.T) {
	follows := new(MockFollowRepository)
	users := new(MockUserRepository)
	recorder := new(MockRecorder)
	h := NewFollowHandler(follows, users, recorder)

	users.On("GetUserByID", uint(1)).Return(&models.User{ID: 1, Username: "alice", FollowersCount: 3}, nil)
	follows.On("CreateFollow", &models.Follow{FollowerID: bob.ID, FollowingID: 1}).Return(nil)
	recorder.On("RecordInteraction", "follow", outcomeApplied).Return()

	c, rec := newContext(http.MethodPost, "/follow/1", "", bob, map[string]string{"id": "1"})
	require.NoError(t, h.FollowUser(c))

	status := decodeData[models.FollowStatus](t, rec.Body.Bytes())
	assert.True(t, status.Following)
	require.NotNil(t, status.FollowersCount)
	assert.Equal(t, 3, *status.FollowersCount)
	mock.AssertExpectationsForObjects(t, follows, users, recorder)
}

func TestFollowRejections(t *testing.T) {
	follows := new(MockFollowRepository)
	users := new(MockUserRepository)
	h := NewFollowHandler(follows, users, nil)

	c, _ := newContext(http.MethodPost, "/follow/2", "", bob, map[string]string{"id": "2"})
	code, msg := httpStatus(t, h.FollowUser(c))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot follow yourself", msg)

	users.On("GetUserByID", uint(8)).Return(nil, repositories.ErrNotFound)
	c, _ = newContext(http.MethodPost, "/follow/8", "", bob, map[string]string{"id": "8"})
	code, _ = httpStatus(t, h.FollowUser(c))
	assert.Equal(t, http.StatusNotFound, code)

	users.On("GetUserByID", uint(1)).Return(&models.User{ID: 1}, nil)
	follows.On("DeleteFollow", bob.ID, uint(1)).Return(repositories.ErrNotFound)
	c, _ = newContext(http.MethodDelete, "/follow/1", "", bob, map[string]string{"id": "1"})
	code, msg = httpStatus(t, h.UnfollowUser(c))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Not following this user", msg)
}
