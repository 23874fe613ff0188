package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/social/internal/middleware"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/labstack/echo/v4"
)

const maxPageSize = 100

const (
	outcomeApplied  = "applied"
	outcomeConflict = "conflict"
)

// InteractionRecorder counts like and follow requests by outcome.
type InteractionRecorder interface {
	RecordInteraction(kind, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordInteraction(string, string) {}

func respond[T any](c echo.Context, status int, data T) error {
	return c.JSON(status, models.OK(data))
}

func respondMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, models.Message(msg))
}

// currentViewer returns the viewer set by the JWT middleware.
func currentViewer(c echo.Context) viewer.Viewer {
	if v, ok := c.Get(middleware.ViewerKey).(viewer.Viewer); ok {
		return v
	}
	return viewer.Anonymous
}

func requireViewer(c echo.Context) (viewer.Viewer, error) {
	v := currentViewer(c)
	if v.IsAnonymous() {
		return v, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return v, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func idParam(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return uint(id), nil
}

// page reads limit and offset. A missing limit means no paging.
func page(c echo.Context) (offset, limit int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if limit < 0 {
		limit = 0
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// storeError maps a repository error onto an HTTP error, naming the entity for 404s.
func storeError(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
