// Package session keeps the signed-in user's token between requests and
// exposes it as the viewer context of the client.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a session is kept when the token has no expiry.
const DefaultTTL = 24 * time.Hour

const defaultKey = "current"

// Authenticator is the account endpoint set the manager signs in through.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	FirebaseLogin(ctx context.Context, idToken string, req models.FirebaseLoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Session is the stored sign-in state.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Manager stores the session in a Cache and hands its token to the API client.
type Manager struct {
	auth   Authenticator
	cache  Cache
	key    string
	ttl    time.Duration
	parser *jwt.Parser
	logger *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey stores the session under key, letting several accounts share a cache.
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithTTL sets the maximum lifetime of a stored session.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(auth Authenticator, cache Cache, opts ...Option) *Manager {
	if cache == nil {
		cache = NewMemoryCache()
	}
	m := &Manager{
		auth:   auth,
		cache:  cache,
		key:    defaultKey,
		ttl:    DefaultTTL,
		parser: jwt.NewParser(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login signs in with email and password and stores the session.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (viewer.Viewer, error) {
	res, err := m.auth.Login(ctx, req)
	if err != nil {
		return viewer.Anonymous, err
	}
	return m.start(ctx, res)
}

// FirebaseLogin exchanges a Firebase ID token for a session.
func (m *Manager) FirebaseLogin(ctx context.Context, idToken string, req models.FirebaseLoginRequest) (viewer.Viewer, error) {
	res, err := m.auth.FirebaseLogin(ctx, idToken, req)
	if err != nil {
		return viewer.Anonymous, err
	}
	return m.start(ctx, res)
}

func (m *Manager) start(ctx context.Context, res *models.LoginResponse) (viewer.Viewer, error) {
	claims, err := m.claims(res.Token)
	if err != nil {
		return viewer.Anonymous, err
	}

	ttl := m.ttl
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return viewer.Anonymous, apperrors.New(apperrors.CodeServerRejected, "session token already expired")
	}

	buf, err := json.Marshal(Session{Token: res.Token, User: res.User})
	if err != nil {
		return viewer.Anonymous, err
	}
	if err := m.cache.Set(ctx, m.key, buf, ttl); err != nil {
		return viewer.Anonymous, apperrors.Wrap(apperrors.CodeTransport, "storing session", err)
	}

	v := viewerOf(claims)
	m.logger.Info("signed in", zap.Uint("user_id", v.ID), zap.String("username", v.Username), zap.Duration("ttl", ttl))
	return v, nil
}

// Current returns the stored session, if any.
func (m *Manager) Current(ctx context.Context) (*Session, bool, error) {
	buf, ok, err := m.cache.Get(ctx, m.key)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeTransport, "reading session", err)
	}
	if !ok {
		return nil, false, nil
	}
	var s Session
	if err := json.Unmarshal(buf, &s); err != nil {
		m.logger.Warn("dropping unreadable session", zap.Error(err))
		_ = m.cache.Delete(ctx, m.key)
		return nil, false, nil
	}
	return &s, true, nil
}

// Token implements api.TokenSource. It returns "" without a session.
func (m *Manager) Token(ctx context.Context) (string, error) {
	s, ok, err := m.Current(ctx)
	if err != nil || !ok {
		return "", err
	}
	return s.Token, nil
}

// Viewer returns the viewer derived from the stored token, or viewer.Anonymous.
func (m *Manager) Viewer(ctx context.Context) (viewer.Viewer, error) {
	s, ok, err := m.Current(ctx)
	if err != nil || !ok {
		return viewer.Anonymous, err
	}
	claims, err := m.claims(s.Token)
	if err != nil {
		return viewer.Anonymous, err
	}
	return viewerOf(claims), nil
}

// Logout ends the session on the server and forgets it locally. The local
// session is cleared even when the server call fails.
func (m *Manager) Logout(ctx context.Context) error {
	_, ok, err := m.Current(ctx)
	if err != nil {
		return err
	}
	var remoteErr error
	if ok {
		remoteErr = m.auth.Logout(ctx)
		if remoteErr != nil {
			m.logger.Warn("server logout failed", zap.Error(remoteErr))
		}
	}
	if err := m.cache.Delete(ctx, m.key); err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "clearing session", err)
	}
	return remoteErr
}

// claims reads the token payload. The signature is verified by the server.
func (m *Manager) claims(token string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	if _, _, err := m.parser.ParseUnverified(token, claims); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServerRejected, "unreadable session token", err)
	}
	if claims.UserID == 0 {
		return nil, apperrors.New(apperrors.CodeServerRejected, "session token has no user")
	}
	return claims, nil
}

func viewerOf(c *models.JwtCustomClaims) viewer.Viewer {
	role := c.Role
	if role == "" {
		role = models.RoleUser
	}
	return viewer.Viewer{ID: c.UserID, Username: c.Username, Role: role}
}
