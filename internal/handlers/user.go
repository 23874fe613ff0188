package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
)

const searchLimit = 20

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	uploadDir        string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, uploadDir string) *UserHandler {
	return &UserHandler{userRepository: userRepo, followRepository: followRepo, uploadDir: uploadDir}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.GET("/users/explore", h.ExploreUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/username/:username", h.GetUserByUsername)
	g.GET("/users/:id", h.GetUser)
}

// GetProfile retrieves the viewer's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(v.ID)
	if err != nil {
		return storeError(err, "User profile")
	}
	return respond(c, http.StatusOK, user)
}

// GetUser retrieves a user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := idParam(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		return storeError(err, "User profile")
	}
	return h.replyUsers(c, []models.User{*user}, true)
}

// GetUserByUsername retrieves a user's profile by username
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return storeError(err, "User profile")
	}
	return h.replyUsers(c, []models.User{*user}, true)
}

// ExploreUsers lists other users to discover
func (h *UserHandler) ExploreUsers(c echo.Context) error {
	offset, limit := page(c)
	users, err := h.userRepository.GetUsers(currentViewer(c).ID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.replyUsers(c, users, false)
}

// SearchUsers searches users by username or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}
	users, err := h.userRepository.SearchUsers(query, searchLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.replyUsers(c, users, false)
}

// UpdateProfile updates the viewer's profile from a multipart form with an optional avatar
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(v.ID)
	if err != nil {
		return storeError(err, "User profile")
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	avatar, err := saveUpload(c, "avatar", h.uploadDir)
	if err != nil {
		return err
	}
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, user)
}

// replyUsers fills IsFollowed for the viewer and answers with one user or the list.
func (h *UserHandler) replyUsers(c echo.Context, users []models.User, single bool) error {
	followed, err := h.followRepository.FilterFollowed(currentViewer(c).ID, userIDs(users))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range users {
		users[i].IsFollowed = followed[users[i].ID]
	}
	if single {
		return respond(c, http.StatusOK, users[0])
	}
	return respond(c, http.StatusOK, nonNilUsers(users))
}
