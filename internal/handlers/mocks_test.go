package handlers

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/anonto42/nano-midea/social/internal/middleware"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/anonto42/nano-midea/social/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockLikeRepository struct {
	mock.Mock
}

var _ repositories.LikeRepository = (*MockLikeRepository)(nil)

func (m *MockLikeRepository) CreateLike(like *models.Like) error {
	args := m.Called(like)
	return args.Error(0)
}

func (m *MockLikeRepository) DeleteLike(postID, userID uint) error {
	args := m.Called(postID, userID)
	return args.Error(0)
}

func (m *MockLikeRepository) HasUserLikedPost(postID, userID uint) (bool, error) {
	args := m.Called(postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) GetLikesCountByPostID(postID uint) (int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) GetLikedPostIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockLikeRepository) FilterLiked(userID uint, postIDs []uint) (map[uint]bool, error) {
	args := m.Called(userID, postIDs)
	return args.Get(0).(map[uint]bool), args.Error(1)
}

func (m *MockLikeRepository) DeleteLikesByPostID(postID uint) error {
	args := m.Called(postID)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

var _ repositories.PostRepository = (*MockPostRepository)(nil)

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) FindPosts(ctx context.Context, q repositories.PostQuery) ([]models.Post, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

type MockFollowRepository struct {
	mock.Mock
}

var _ repositories.FollowRepository = (*MockFollowRepository)(nil)

func (m *MockFollowRepository) CreateFollow(follow *models.Follow) error {
	args := m.Called(follow)
	return args.Error(0)
}

func (m *MockFollowRepository) DeleteFollow(followerID, followingID uint) error {
	args := m.Called(followerID, followingID)
	return args.Error(0)
}

func (m *MockFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) FilterFollowed(followerID uint, userIDs []uint) (map[uint]bool, error) {
	args := m.Called(followerID, userIDs)
	return args.Get(0).(map[uint]bool), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

var _ repositories.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	args := m.Called(firebaseUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	args := m.Called(ids)
	return args.Get(0).(map[uint]models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(excludeID uint, offset, limit int) ([]models.User, error) {
	args := m.Called(excludeID, offset, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

var _ InteractionRecorder = (*MockRecorder)(nil)

func (m *MockRecorder) RecordInteraction(kind, outcome string) {
	m.Called(kind, outcome)
}

// newContext builds an echo context for method and target with the route
// params set, signed in as v unless v is anonymous.
func newContext(method, target, body string, v viewer.Viewer, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if !v.IsAnonymous() {
		c.Set(middleware.ViewerKey, v)
	}
	return c, rec
}
