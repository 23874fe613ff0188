package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/anonto42/nano-midea/social/internal/models"
)

// UserService handles account and profile endpoints.
type UserService service

// Register creates an account.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.client.doJSON(ctx, http.MethodPost, "/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login signs in with email and password.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var res models.LoginResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/login", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FirebaseLogin exchanges a Firebase ID token for an application session.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string, req models.FirebaseLoginRequest) (*models.LoginResponse, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var res models.LoginResponse
	err := s.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/firebase-login",
		body:        jsonBody(req),
		contentType: "application/json",
		token:       &idToken,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout ends the server side session.
func (s *UserService) Logout(ctx context.Context) error {
	return s.client.doJSON(ctx, http.MethodPost, "/logout", nil, nil)
}

// Me returns the signed-in user.
func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	return s.get(ctx, "/users/me")
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	return s.get(ctx, fmt.Sprintf("/users/%d", userID))
}

// ByUsername returns a user by username.
func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.get(ctx, "/users/username/"+url.PathEscape(username))
}

// Explore returns users to discover.
func (s *UserService) Explore(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/users/explore", query: pagination(limit, offset)}, &users)
	return users, err
}

// Search returns users whose username or email contains query.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/users/search", query: url.Values{"q": {query}}}, &users)
	return users, err
}

// UpdateProfile changes the profile of the signed-in user. avatar may be nil.
func (s *UserService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest, avatar *Upload) (*models.User, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var fields []formField
	if req.Username != "" {
		fields = append(fields, formField{"username", req.Username})
	}
	if req.Bio != "" {
		fields = append(fields, formField{"bio", req.Bio})
	}

	var u models.User
	if err := s.client.doMultipart(ctx, http.MethodPut, "/users/me", fields, "avatar", avatar, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) get(ctx context.Context, path string) (*models.User, error) {
	var u models.User
	if err := s.client.doJSON(ctx, http.MethodGet, path, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
