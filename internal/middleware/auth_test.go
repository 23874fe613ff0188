package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func sign(t *testing.T, key string, claims *models.JwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func validClaims() *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:   7,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func run(mw echo.MiddlewareFunc, authorization string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(func(echo.Context) error { return nil })(c)
	return c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestJWTAuthMiddlewareSetsViewer(t *testing.T) {
	c, err := run(JWTAuthMiddleware(secret), "Bearer "+sign(t, secret, validClaims()))
	require.NoError(t, err)

	v, ok := c.Get(ViewerKey).(viewer.Viewer)
	require.True(t, ok)
	assert.Equal(t, viewer.Viewer{ID: 7, Username: "alice", Role: models.RoleUser}, v)
	claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	anonymous := validClaims()
	anonymous.UserID = 0

	tests := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"wrong key", "Bearer " + sign(t, "other-secret", validClaims())},
		{"expired", "Bearer " + sign(t, secret, expired)},
		{"no user", "Bearer " + sign(t, secret, anonymous)},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := run(JWTAuthMiddleware(secret), tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
			assert.Nil(t, c.Get(ViewerKey))
		})
	}
}

type MockVerifier struct {
	mock.Mock
}

var _ IDTokenVerifier = (*MockVerifier)(nil)

func (m *MockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("VerifyIDToken", mock.Anything, "good").Return(&auth.Token{UID: "uid-1"}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("expired"))

	c, err := run(FirebaseAuthMiddleware(verifier), "Bearer good")
	require.NoError(t, err)
	token, ok := c.Get(FirebaseTokenKey).(*auth.Token)
	require.True(t, ok)
	assert.Equal(t, "uid-1", token.UID)

	_, err = run(FirebaseAuthMiddleware(verifier), "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	verifier.AssertExpectations(t)
}
