package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}, &models.Follow{}, &models.Report{}))
	return db
}

func createUsers(t *testing.T, repo UserRepository, names ...string) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		u := &models.User{Username: name, Email: fmt.Sprintf("%s@example.com", name)}
		require.NoError(t, repo.CreateUser(u))
		users = append(users, *u)
	}
	return users
}

func TestUserRepository(t *testing.T) {
	repo := NewPostgresUserRepository(newTestDB(t))
	users := createUsers(t, repo, "alice", "bob", "carol")
	assert.Equal(t, models.RoleUser, users[0].Role)

	got, err := repo.GetUserByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, got.ID)

	_, err = repo.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := repo.GetUsersByIDs([]uint{users[1].ID, users[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "carol", byID[users[2].ID].Username)

	others, err := repo.GetUsers(users[0].ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, others, 2)
	for _, u := range others {
		assert.NotEqual(t, users[0].ID, u.ID)
	}

	found, err := repo.SearchUsers("CA", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Username)

	err = repo.CreateUser(&models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFollowRepositoryMaintainsCounters(t *testing.T) {
	db := newTestDB(t)
	users := NewPostgresUserRepository(db)
	follows := NewPostgresFollowRepository(db)
	u := createUsers(t, users, "alice", "bob", "carol")

	require.NoError(t, follows.CreateFollow(&models.Follow{FollowerID: u[0].ID, FollowingID: u[1].ID}))
	require.NoError(t, follows.CreateFollow(&models.Follow{FollowerID: u[2].ID, FollowingID: u[1].ID}))
	assert.ErrorIs(t, follows.CreateFollow(&models.Follow{FollowerID: u[0].ID, FollowingID: u[1].ID}), ErrDuplicate)

	bob, err := users.GetUserByID(u[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, bob.FollowersCount)
	alice, err := users.GetUserByID(u[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, alice.FollowingCount)

	followers, err := follows.GetFollowers(u[1].ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	followed, err := follows.FilterFollowed(u[0].ID, []uint{u[1].ID, u[2].ID})
	require.NoError(t, err)
	assert.True(t, followed[u[1].ID])
	assert.False(t, followed[u[2].ID])

	require.NoError(t, follows.DeleteFollow(u[0].ID, u[1].ID))
	assert.ErrorIs(t, follows.DeleteFollow(u[0].ID, u[1].ID), ErrNotFound)

	bob, err = users.GetUserByID(u[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bob.FollowersCount)
	ok, err := follows.IsFollowing(u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLikeRepository(t *testing.T) {
	likes := NewPostgresLikeRepository(newTestDB(t))

	require.NoError(t, likes.CreateLike(&models.Like{PostID: 1, UserID: 7}))
	require.NoError(t, likes.CreateLike(&models.Like{PostID: 2, UserID: 7}))
	assert.ErrorIs(t, likes.CreateLike(&models.Like{PostID: 1, UserID: 7}), ErrDuplicate)

	liked, err := likes.FilterLiked(7, []uint{1, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: true}, liked)

	ids, err := likes.GetLikedPostIDs(7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)

	require.NoError(t, likes.DeleteLike(1, 7))
	assert.ErrorIs(t, likes.DeleteLike(1, 7), ErrNotFound)
	n, err := likes.GetLikesCountByPostID(1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRepositoryDeletesWholeSubtree(t *testing.T) {
	comments := NewPostgresCommentRepository(newTestDB(t))

	add := func(parent *models.Comment, content string) *models.Comment {
		c := &models.Comment{PostID: 1, UserID: 1, Content: content}
		if parent != nil {
			c.ParentID = &parent.ID
		}
		require.NoError(t, comments.CreateComment(c))
		return c
	}
	root := add(nil, "root")
	child := add(root, "child")
	add(child, "grandchild")
	add(root, "second child")
	other := add(nil, "other root")

	desc, err := comments.GetDescendants(root.ID)
	require.NoError(t, err)
	assert.Len(t, desc, 3)

	removed, err := comments.DeleteCommentTree(root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	left, err := comments.GetCommentsByPostID(1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ID)

	_, err = comments.DeleteCommentTree(root.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepositoryClampsCounters(t *testing.T) {
	ctx := context.Background()
	posts := NewPostgresPostRepository(newTestDB(t))

	post := &models.Post{Title: "hello", Content: "world", AuthorID: 1}
	require.NoError(t, posts.CreatePost(ctx, post))

	n, err := posts.AdjustLikeCount(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = posts.AdjustLikeCount(ctx, post.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = posts.AdjustCommentCount(ctx, post.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = posts.AdjustLikeCount(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepositoryFindPosts(t *testing.T) {
	ctx := context.Background()
	posts := NewPostgresPostRepository(newTestDB(t))

	var created []*models.Post
	for i, author := range []uint{1, 2, 1} {
		p := &models.Post{Title: fmt.Sprintf("post %d", i), Content: "body", AuthorID: author}
		require.NoError(t, posts.CreatePost(ctx, p))
		created = append(created, p)
	}
	created[2].Archived = true
	require.NoError(t, posts.UpdatePost(ctx, created[2]))

	visible, err := posts.FindPosts(ctx, PostQuery{})
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	mine, err := posts.FindPosts(ctx, PostQuery{AuthorIDs: []uint{1}, IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := posts.FindPosts(ctx, PostQuery{IDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	paged, err := posts.FindPosts(ctx, PostQuery{IncludeArchived: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	require.NoError(t, posts.DeletePost(ctx, created[0].ID))
	assert.ErrorIs(t, posts.DeletePost(ctx, created[0].ID), ErrNotFound)
	_, err = posts.GetPostByID(ctx, created[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepository(t *testing.T) {
	reports := NewPostgresReportRepository(newTestDB(t))

	r := &models.Report{UserID: 1, PostID: 2, Reason: "spam"}
	require.NoError(t, reports.CreateReport(r))
	assert.Equal(t, models.ReportPending, r.Status)
	require.NoError(t, reports.CreateReport(&models.Report{UserID: 3, PostID: 2, Reason: "abuse"}))

	r.Status = models.ReportResolved
	require.NoError(t, reports.UpdateReport(r))

	all, err := reports.GetReports("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := reports.GetReports(models.ReportPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "abuse", pending[0].Reason)

	_, err = reports.GetReportByID(42)
	assert.ErrorIs(t, err, ErrNotFound)
}
