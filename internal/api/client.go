// Package api is the typed client of the social REST service.
//
// Every endpoint answers with the envelope {success, data?, message?}. Failures
// are reported as *apperrors.AppError: transport problems as Transport,
// already-applied interactions as ConflictAlreadyApplied, missing entities as
// NotFound and everything else as ServerRejected. Requests are never retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is the API root of a locally running server.
const DefaultBaseURL = "http://localhost:5000/api"

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const userAgent = "nano-midea-social-client/1.0"

// Messages the server uses when an interaction is already in the requested state.
var conflictPhrases = []string{"already liked", "already following", "not liked", "not following"}

// TokenSource yields the bearer token for outgoing requests.
// An empty token sends the request without credentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the REST service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens   TokenSource
	logger   *zap.Logger
	validate *validator.Validate

	common service

	Posts    *PostService
	Comments *CommentService
	Likes    *LikeService
	Follows  *FollowService
	Reports  *ReportService
	Users    *UserService
}

type service struct {
	client *Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTokenSource sets the source of bearer tokens.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.common.client = c
	c.Posts = (*PostService)(&c.common)
	c.Comments = (*CommentService)(&c.common)
	c.Likes = (*LikeService)(&c.common)
	c.Follows = (*FollowService)(&c.common)
	c.Reports = (*ReportService)(&c.common)
	c.Users = (*UserService)(&c.common)
	return c
}

// UseTokenSource replaces the token source. Call it before issuing requests.
func (c *Client) UseTokenSource(ts TokenSource) {
	c.tokens = ts
}

// request describes one API call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	token       *string // overrides the token source when set
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request", err)
	}
	return nil
}

// doJSON sends in as a JSON body and decodes the envelope data into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	r := request{method: method, path: path}
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "encoding request body", err)
		}
		r.body = bytes.NewReader(buf)
		r.contentType = "application/json"
	}
	return c.do(ctx, r, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.BaseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "building request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	token := ""
	if r.token != nil {
		token = *r.token
	} else if c.tokens != nil {
		if token, err = c.tokens.Token(ctx); err != nil {
			return apperrors.Wrap(apperrors.CodeTransport, "reading session token", err)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", r.method), zap.String("path", r.path),
			zap.String("request_id", requestID), zap.Error(err))
		return apperrors.Wrap(apperrors.CodeTransport, r.method+" "+r.path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", r.method), zap.String("path", r.path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	return decode(resp, r, out)
}

func decode(resp *http.Response, r request, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "reading response of "+r.method+" "+r.path, err)
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if len(bytes.TrimSpace(body)) == 0 {
		if ok {
			return nil
		}
		return classify(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		if !ok {
			return classify(resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return apperrors.Wrap(apperrors.CodeTransport, "malformed response to "+r.method+" "+r.path, err)
	}

	if !ok || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return classify(resp.StatusCode, msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "malformed data in response to "+r.method+" "+r.path, err)
	}
	return nil
}

// classify maps a failed response onto the error taxonomy.
func classify(status int, message string) error {
	lower := strings.ToLower(message)
	if status == http.StatusConflict {
		return &apperrors.AppError{Code: apperrors.CodeConflictAlreadyApplied, Message: message, Status: status}
	}
	for _, phrase := range conflictPhrases {
		if strings.Contains(lower, phrase) {
			return &apperrors.AppError{Code: apperrors.CodeConflictAlreadyApplied, Message: message, Status: status}
		}
	}
	if status == http.StatusNotFound {
		return &apperrors.AppError{Code: apperrors.CodeNotFound, Message: message, Status: status}
	}
	return apperrors.Rejected(status, message)
}

// jsonBody encodes request shapes, which always marshal.
func jsonBody(v any) io.Reader {
	buf, _ := json.Marshal(v)
	return bytes.NewReader(buf)
}

func pagination(limit, offset int) url.Values {
	if limit <= 0 {
		return nil
	}
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	return q
}
