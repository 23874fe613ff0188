// Command thread signs in, prints the comment thread of a post and can toggle
// a like or run a user search on the way.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/social/internal/api"
	"github.com/anonto42/nano-midea/social/internal/commenttree"
	"github.com/anonto42/nano-midea/social/internal/interaction"
	"github.com/anonto42/nano-midea/social/internal/logger"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/search"
	"github.com/anonto42/nano-midea/social/internal/session"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"github.com/anonto42/nano-midea/social/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv(zap.NewNop())
	cfg := config.Load()

	var (
		baseURL  = flag.String("base", cfg.APIBaseURL, "API base URL")
		email    = flag.String("email", os.Getenv("SOCIAL_EMAIL"), "account email")
		password = flag.String("password", os.Getenv("SOCIAL_PASSWORD"), "account password")
		postID   = flag.Uint("post", 0, "post whose comments are printed")
		like     = flag.Bool("like", false, "toggle the like on -post")
		query    = flag.String("search", "", "search users by keyword")
		logout   = flag.Bool("logout", false, "end the stored session and exit")
	)
	flag.Parse()

	log, err := logger.NewDevelopment(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := api.NewClient(*baseURL, api.WithLogger(log))
	cache := sessionCache(cfg)
	sessions := session.NewManager(client.Users, cache, session.WithTTL(cfg.SessionTTL), session.WithLogger(log))
	client.UseTokenSource(sessions)

	if *logout {
		if err := sessions.Logout(ctx); err != nil {
			log.Warn("server logout failed", zap.Error(err))
		}
		return
	}

	if *email != "" {
		if _, err := sessions.Login(ctx, models.LoginRequest{Email: *email, Password: *password}); err != nil {
			log.Fatal("login failed", zap.Error(err))
		}
	}
	v, err := sessions.Viewer(ctx)
	if err != nil {
		log.Fatal("reading session", zap.Error(err))
	}
	if v.IsAnonymous() {
		log.Info("no session; pass -email and -password to sign in")
	} else {
		fmt.Printf("signed in as %s (%s)\n", v.Username, v.Role)
	}

	if *postID != 0 {
		if err := showPost(ctx, os.Stdout, client, uint(*postID)); err != nil {
			log.Fatal("loading post", zap.Uint("post_id", *postID), zap.Error(err))
		}
	}

	if *like && *postID != 0 {
		if err := toggleLike(ctx, client, v, uint(*postID), log); err != nil {
			log.Fatal("toggling like", zap.Error(err))
		}
	}

	if *query != "" {
		searchUsers(ctx, client, *query, cfg.SearchDebounce, log)
	}
}

func sessionCache(cfg *config.Config) session.Cache {
	if cfg.RedisAddr == "" {
		return session.NewMemoryCache()
	}
	return session.NewRedisCache(&redis.Options{Addr: cfg.RedisAddr})
}

func showPost(ctx context.Context, w io.Writer, client *api.Client, postID uint) error {
	post, err := client.Posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "#%d %s by %s (%d likes, %d comments)\n",
		post.ID, post.Title, post.Author.Username, post.LikeCount, post.CommentCount)

	forest, err := client.Comments.Forest(ctx, postID)
	if err != nil {
		return err
	}
	printForest(w, forest)
	return nil
}

func printForest(w io.Writer, f commenttree.Forest) {
	f.Walk(func(n *commenttree.Node, depth int) bool {
		c := n.Comment
		to := ""
		if c.ReplyToUser != nil {
			to = " -> @" + c.ReplyToUser.Username
		}
		fmt.Fprintf(w, "%s@%s%s: %s\n", strings.Repeat("  ", depth), c.User.Username, to, c.Content)
		return true
	})
}

func toggleLike(ctx context.Context, client *api.Client, v viewer.Viewer, postID uint, log *zap.Logger) error {
	status, err := client.Likes.Status(ctx, postID)
	if err != nil {
		return err
	}
	count := 0
	if status.LikeCount != nil {
		count = *status.LikeCount
	}

	store := interaction.NewStore(v,
		interaction.WithRemote(interaction.KindLike, interaction.LikeRemote(client.Likes)),
		interaction.WithLogger(log),
		interaction.WithObserver(func(key interaction.Key, s interaction.State) {
			log.Debug("like state", zap.Uint("post_id", key.EntityID), zap.Bool("active", s.Active), zap.Int("count", s.Count), zap.Bool("pending", s.Pending))
		}),
	)
	defer store.Close()
	store.Seed(interaction.LikeKey(postID), status.IsLiked, count)

	st, err := store.ToggleLike(ctx, postID)
	if err != nil {
		return err
	}
	fmt.Printf("post %d liked=%t likes=%d\n", postID, st.Active, st.Count)
	return nil
}

func searchUsers(ctx context.Context, client *api.Client, query string, delay time.Duration, log *zap.Logger) {
	done := make(chan search.Result, 1)
	us := search.NewUserSearch(client.Users, delay, func(r search.Result) {
		select {
		case done <- r:
		default:
		}
	}, log)
	defer us.Close()

	us.Type(ctx, query)
	select {
	case r := <-done:
		if r.Err != nil {
			log.Error("search failed", zap.String("query", r.Query), zap.Error(r.Err))
			return
		}
		fmt.Printf("%d users match %q\n", len(r.Users), r.Query)
		for _, u := range r.Users {
			fmt.Printf("  @%s\n", u.Username)
		}
	case <-ctx.Done():
		log.Warn("search timed out", zap.String("query", query))
	}
}
