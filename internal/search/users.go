package search

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/social/internal/models"
	"go.uber.org/zap"
)

// DefaultDelay is the pause in typing after which a search is issued.
const DefaultDelay = 500 * time.Millisecond

// Searcher looks users up by keyword.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.User, error)
}

// Result is the outcome of one search.
type Result struct {
	Query string
	Users []models.User
	Err   error
}

// UserSearch debounces keystrokes into user searches. Only the result of the
// latest query is delivered.
type UserSearch struct {
	searcher Searcher
	debounce *Debouncer
	onResult func(Result)
	logger   *zap.Logger
}

// NewUserSearch creates a search that reports results to onResult.
// A non-positive delay selects DefaultDelay.
func NewUserSearch(s Searcher, delay time.Duration, onResult func(Result), logger *zap.Logger) *UserSearch {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserSearch{
		searcher: s,
		debounce: NewDebouncer(delay),
		onResult: onResult,
		logger:   logger,
	}
}

// Type records the current content of the search box. A blank query clears
// the results immediately.
func (u *UserSearch) Type(ctx context.Context, query string) {
	q := strings.TrimSpace(query)
	if q == "" {
		u.debounce.Cancel()
		u.onResult(Result{})
		return
	}

	u.debounce.Schedule(ctx, q, func(ctx context.Context) {
		users, err := u.searcher.Search(ctx, q)
		delivered := u.debounce.Commit(ctx, func() {
			u.onResult(Result{Query: q, Users: users, Err: err})
		})
		if !delivered {
			u.logger.Debug("dropping superseded search result", zap.String("query", q))
		}
	})
}

// Close discards any pending search.
func (u *UserSearch) Close() {
	u.debounce.Cancel()
}
