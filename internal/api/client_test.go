package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/interaction"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, env any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func newTestClient(t *testing.T, mux *http.ServeMux, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", opts...)
}

func TestGetPostDecodesEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.PathValue("id"))
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		writeEnvelope(w, http.StatusOK, models.OK(models.Post{ID: 3, Title: "hello", LikeCount: 2, IsLiked: true}))
	})
	c := newTestClient(t, mux, WithTokenSource(StaticToken("tkn")))

	post, err := c.Posts.Get(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "hello", post.Title)
	assert.Equal(t, 2, post.LikeCount)
	assert.True(t, post.IsLiked)
}

func TestAnonymousRequestHasNoAuthorization(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		writeEnvelope(w, http.StatusOK, models.OK([]models.Post{{ID: 1}, {ID: 2}}))
	})
	c := newTestClient(t, mux)

	posts, err := c.Posts.List(context.Background(), 5, 10)

	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		env    any
		want   *apperrors.AppError
	}{
		{"conflict status", http.StatusConflict, models.Fail("Post already liked"), apperrors.ErrConflictAlreadyApplied},
		{"conflict message", http.StatusBadRequest, models.Fail("You are already following this user"), apperrors.ErrConflictAlreadyApplied},
		{"not found", http.StatusNotFound, models.Fail("Post not found"), apperrors.ErrNotFound},
		{"forbidden", http.StatusForbidden, models.Fail("forbidden"), apperrors.ErrServerRejected},
		{"success false with 200", http.StatusOK, models.Fail("validation failed"), apperrors.ErrServerRejected},
		{"html error page", http.StatusBadGateway, "<html>bad gateway</html>", apperrors.ErrServerRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.env)
			})
			c := newTestClient(t, mux)

			_, err := c.Likes.Like(context.Background(), 1)

			assert.ErrorIs(t, err, tt.want)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.Status)
		})
	}
}

func TestTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Posts.Get(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrTransport)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{not json")
	})
	_, err = newTestClient(t, mux).Posts.Get(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestValidationFailsBeforeSending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	c := newTestClient(t, mux)

	_, err := c.Comments.Create(context.Background(), 1, models.CommentRequest{Content: ""})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = c.Comments.Reply(context.Background(), 1, 2, models.ReplyRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = c.Users.Login(context.Background(), models.LoginRequest{Email: "nope", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreatePostSendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Trip", r.FormValue("title"))
		assert.Equal(t, "photos", r.FormValue("content"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "beach.png", hdr.Filename)
		assert.Equal(t, "PNG", string(data))
		writeEnvelope(w, http.StatusCreated, models.OK(models.Post{ID: 9, Title: "Trip", Image: "/uploads/beach.png"}))
	})
	c := newTestClient(t, mux)

	post, err := c.Posts.Create(context.Background(),
		models.PostRequest{Title: "Trip", Content: "photos"},
		&Upload{Filename: "beach.png", Content: strings.NewReader("PNG")})

	require.NoError(t, err)
	assert.Equal(t, uint(9), post.ID)
}

func TestUpdatePostSendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/posts/4", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "new body", r.FormValue("content"))
		assert.Equal(t, "true", r.FormValue("edited"))
		_, hasTitle := r.MultipartForm.Value["title"]
		assert.False(t, hasTitle)
		writeEnvelope(w, http.StatusOK, models.OK(models.Post{ID: 4, Content: "new body", Edited: true}))
	})
	c := newTestClient(t, mux)

	edited := true
	post, err := c.Posts.Update(context.Background(), 4, models.UpdatePostRequest{Content: "new body", Edited: &edited})

	require.NoError(t, err)
	assert.True(t, post.Edited)
}

func TestCommentForest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/2/comments", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, models.OK([]models.Comment{
			{ID: 1, Content: "root", Replies: []models.Comment{{ID: 2, Content: "reply"}}},
			{ID: 3, Content: "second root"},
		}))
	})
	c := newTestClient(t, mux)

	f, err := c.Comments.Forest(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	n, ok := f.Find(2)
	require.True(t, ok)
	assert.Equal(t, uint(1), *n.Comment.ParentID)
}

func TestReplySendsAddressee(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/2/comments/5/reply", func(w http.ResponseWriter, r *http.Request) {
		var req models.ReplyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.ReplyRequest{Content: "agreed", ReplyToUserID: 8}, req)
		parent := uint(5)
		writeEnvelope(w, http.StatusCreated, models.OK(models.Comment{
			ID: 6, PostID: 2, ParentID: &parent, Content: req.Content,
			ReplyToUser: &models.AuthorResponse{ID: 8, Username: "ida"},
		}))
	})
	c := newTestClient(t, mux)

	reply, err := c.Comments.Reply(context.Background(), 2, 5, models.ReplyRequest{Content: "agreed", ReplyToUserID: 8})

	require.NoError(t, err)
	assert.Equal(t, uint(8), reply.ReplyToUser.ID)
}

func TestDeleteWithEmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/comments/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	assert.NoError(t, c.Comments.Delete(context.Background(), 7))
}

func TestSearchEscapesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jo & co", r.URL.Query().Get("q"))
		writeEnvelope(w, http.StatusOK, models.OK([]models.User{{ID: 1, Username: "jo"}}))
	})
	c := newTestClient(t, mux)

	users, err := c.Users.Search(context.Background(), "jo & co")

	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFirebaseLoginUsesIDToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/firebase-login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer firebase-id-token", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, models.OK(models.LoginResponse{Token: "app-token", User: models.User{ID: 4}}))
	})
	c := newTestClient(t, mux, WithTokenSource(StaticToken("stale")))

	res, err := c.Users.FirebaseLogin(context.Background(), "firebase-id-token", models.FirebaseLoginRequest{})

	require.NoError(t, err)
	assert.Equal(t, "app-token", res.Token)
}

func TestLikeStoreAgainstServer(t *testing.T) {
	count := 3
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		count++
		writeEnvelope(w, http.StatusOK, models.OK(models.LikeStatus{IsLiked: true, LikeCount: &count}))
	})
	mux.HandleFunc("DELETE /api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, models.Fail("Post not liked"))
	})
	c := newTestClient(t, mux, WithTokenSource(StaticToken("tkn")))

	store := interaction.NewStore(viewer.Viewer{ID: 1}, interaction.WithRemote(interaction.KindLike, interaction.LikeRemote(c.Likes)))
	store.SeedPost(models.Post{ID: 1, LikeCount: 3})

	st, err := store.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, interaction.State{Active: true, Count: 4}, st)

	st, err = store.ToggleLike(context.Background(), 1)
	assert.True(t, apperrors.IsBenign(err))
	assert.Equal(t, interaction.State{Active: false, Count: 4}, st)
}
