package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	recorder         InteractionRecorder
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, recorder InteractionRecorder) *FollowHandler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		recorder:         recorder,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:id", h.FollowUser)
	g.DELETE("/follow/:id", h.UnfollowUser)
	g.GET("/users/followers", h.GetFollowers)
	g.GET("/users/followings", h.GetFollowings)
}

// FollowUser follows a user and answers with the target's follower count
func (h *FollowHandler) FollowUser(c echo.Context) error {
	followerID, targetID, err := h.edge(c)
	if err != nil {
		return err
	}

	err = h.followRepository.CreateFollow(&models.Follow{FollowerID: followerID, FollowingID: targetID})
	if errors.Is(err, repositories.ErrDuplicate) {
		h.recorder.RecordInteraction("follow", outcomeConflict)
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.recorder.RecordInteraction("follow", outcomeApplied)
	return h.status(c, targetID, true)
}

// UnfollowUser removes the follow edge and answers with the target's follower count
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	followerID, targetID, err := h.edge(c)
	if err != nil {
		return err
	}

	err = h.followRepository.DeleteFollow(followerID, targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		h.recorder.RecordInteraction("unfollow", outcomeConflict)
		return echo.NewHTTPError(http.StatusConflict, "Not following this user")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.recorder.RecordInteraction("unfollow", outcomeApplied)
	return h.status(c, targetID, false)
}

// GetFollowers lists the users following the viewer
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowers(v.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	followed, err := h.followRepository.FilterFollowed(v.ID, userIDs(users))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range users {
		users[i].IsFollowed = followed[users[i].ID]
	}
	return respond(c, http.StatusOK, nonNilUsers(users))
}

// GetFollowings lists the users the viewer follows
func (h *FollowHandler) GetFollowings(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowing(v.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range users {
		users[i].IsFollowed = true
	}
	return respond(c, http.StatusOK, nonNilUsers(users))
}

func (h *FollowHandler) edge(c echo.Context) (uint, uint, error) {
	v, err := requireViewer(c)
	if err != nil {
		return 0, 0, err
	}
	targetID, err := idParam(c, "id", "user")
	if err != nil {
		return 0, 0, err
	}
	if !v.CanFollow(targetID) {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return 0, 0, storeError(err, "User")
	}
	return v.ID, targetID, nil
}

func (h *FollowHandler) status(c echo.Context, targetID uint, following bool) error {
	target, err := h.userRepository.GetUserByID(targetID)
	if err != nil {
		return storeError(err, "User")
	}
	count := target.FollowersCount
	return respond(c, http.StatusOK, models.FollowStatus{Following: following, FollowersCount: &count})
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func nonNilUsers(users []models.User) []models.User {
	if users == nil {
		return []models.User{}
	}
	return users
}
