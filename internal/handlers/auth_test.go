package handlers

import (
	"net/http"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/social/internal/middleware"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const authSecret = "auth-secret"

func TestRegisterRejectsTakenEmail(t *testing.T) {
	users := new(MockUserRepository)
	h := NewAuthHandler(users, authSecret)
	users.On("GetUserByEmail", "alice@example.com").Return(&models.User{ID: 1}, nil)

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	c, _ := newContext(http.MethodPost, "/register", body, viewer.Anonymous, nil)
	code, _ := httpStatus(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, code)
	users.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestRegisterValidatesPayload(t *testing.T) {
	h := NewAuthHandler(new(MockUserRepository), authSecret)

	body := `{"username":"al","email":"not-an-email","password":"short"}`
	c, _ := newContext(http.MethodPost, "/register", body, viewer.Anonymous, nil)
	code, _ := httpStatus(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	users := new(MockUserRepository)
	h := NewAuthHandler(users, authSecret)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetUserByEmail", "alice@example.com").
		Return(&models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hash), Role: models.RoleAdmin}, nil)

	c, rec := newContext(http.MethodPost, "/login", `{"email":"alice@example.com","password":"password123"}`, viewer.Anonymous, nil)
	require.NoError(t, h.Login(c))

	res := decodeData[models.LoginResponse](t, rec.Body.Bytes())
	assert.Equal(t, "alice", res.User.Username)

	claims := &models.JwtCustomClaims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) { return []byte(authSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	c, _ = newContext(http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong"}`, viewer.Anonymous, nil)
	code, msg := httpStatus(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", msg)
}

func TestFirebaseLoginCreatesAccount(t *testing.T) {
	users := new(MockUserRepository)
	h := NewAuthHandler(users, authSecret)

	users.On("GetUserByFirebaseUID", "uid-1").Return(nil, repositories.ErrNotFound)
	users.On("GetUserByEmail", "jane.doe@example.com").Return(nil, repositories.ErrNotFound)
	users.On("GetUserByUsername", "janedoe").Return(nil, repositories.ErrNotFound)
	users.On("CreateUser", mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "janedoe" && u.FirebaseUID != nil && *u.FirebaseUID == "uid-1"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 5
	}).Return(nil)

	c, rec := newContext(http.MethodPost, "/firebase-login", "", viewer.Anonymous, nil)
	c.Set(middleware.FirebaseTokenKey, &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "jane.doe@example.com"}})
	require.NoError(t, h.FirebaseLogin(c))

	res := decodeData[models.LoginResponse](t, rec.Body.Bytes())
	assert.Equal(t, uint(5), res.User.ID)
	assert.NotEmpty(t, res.Token)
	users.AssertExpectations(t)
}
