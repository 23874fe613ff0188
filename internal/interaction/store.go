// Package interaction keeps the optimistic like and follow state of one view.
//
// Each (kind, entity) pair moves through Synced -> Pending -> Synced. A toggle
// is applied locally at once, the request is issued, and the response either
// confirms the prediction (possibly correcting the counter), reconciles a
// conflict, or rolls the state back. Only one request per entity may be in
// flight; further toggles are refused until it settles.
package interaction

import (
	"context"
	"sync"

	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/viewer"
	"go.uber.org/zap"
)

// Kind is the type of a toggleable interaction.
type Kind string

const (
	KindLike   Kind = "like"
	KindFollow Kind = "follow"
)

// Key identifies the interaction state of one entity for the store's viewer.
type Key struct {
	Kind     Kind
	EntityID uint
}

// LikeKey is the key of the like state of a post.
func LikeKey(postID uint) Key { return Key{Kind: KindLike, EntityID: postID} }

// FollowKey is the key of the follow state of a user.
func FollowKey(userID uint) Key { return Key{Kind: KindFollow, EntityID: userID} }

// State is the visible interaction state. Active is liked or following; Count is
// the like count or follower count and is never negative.
type State struct {
	Active  bool
	Count   int
	Pending bool
}

// Observer receives every visible state change. It is called with the store
// locked and must not call back into the store.
type Observer func(key Key, s State)

// Option configures a Store.
type Option func(*Store)

// WithRemote sets the remote used by Toggle for kind.
func WithRemote(kind Kind, r Remote) Option {
	return func(s *Store) { s.remotes[kind] = r }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type entry struct {
	state    State
	inflight *Mutation
}

// Store holds the interaction state owned by one view for one viewer.
// It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	viewer   viewer.Viewer
	entries  map[Key]*entry
	remotes  map[Kind]Remote
	observer Observer
	logger   *zap.Logger
	closed   bool
}

// NewStore creates an empty store for v.
func NewStore(v viewer.Viewer, opts ...Option) *Store {
	s := &Store{
		viewer:  v,
		entries: make(map[Key]*entry),
		remotes: make(map[Kind]Remote),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed loads freshly fetched state for key. Any request still in flight for
// key becomes stale and its response is ignored.
func (s *Store) Seed(key Key, active bool, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	if e.inflight != nil {
		s.logger.Debug("seed supersedes in-flight request",
			zap.String("kind", string(key.Kind)), zap.Uint("entity_id", key.EntityID))
	}
	e.inflight = nil
	e.state = State{Active: active, Count: clamp(count)}
	s.notify(key, e.state)
}

// SeedPost seeds the like state of p.
func (s *Store) SeedPost(p models.Post) {
	s.Seed(LikeKey(p.ID), p.IsLiked, p.LikeCount)
}

// SeedUser seeds the follow state of u.
func (s *Store) SeedUser(u models.User) {
	s.Seed(FollowKey(u.ID), u.IsFollowed, u.FollowersCount)
}

// State returns the current state of key.
func (s *Store) State(key Key) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Begin applies the optimistic transition for key and returns the mutation to
// settle once the request completes.
func (s *Store) Begin(key Key) (*Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "interaction store is closed")
	}
	if s.viewer.IsAnonymous() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "sign in to %s", key.Kind)
	}
	if key.Kind == KindFollow && s.viewer.IsSelf(key.EntityID) {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "cannot follow yourself")
	}

	e, ok := s.entries[key]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "no %s state for entity %d", key.Kind, key.EntityID)
	}
	if e.inflight != nil {
		return nil, apperrors.Newf(apperrors.CodePending, "%s request for entity %d is still in flight", key.Kind, key.EntityID)
	}

	prev := e.state
	target := State{Active: !prev.Active, Count: prev.Count + 1, Pending: true}
	if prev.Active {
		target.Count = clamp(prev.Count - 1)
	}

	m := &Mutation{Key: key, Previous: prev, Target: target, done: make(chan struct{})}
	e.inflight = m
	e.state = target
	s.notify(key, target)
	return m, nil
}

// Settle resolves m with the outcome of its request.
//
// On success the target state is kept, corrected by the server's values when
// conf carries them. An already-applied conflict keeps the target flag and the
// previous count and returns the conflict error. Any other error restores the
// previous state and is returned.
//
// If the entity was re-seeded or the store closed since Begin, the outcome is
// discarded and the current state is returned without error.
func (s *Store) Settle(m *Mutation, conf *Confirmation, err error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[m.Key]
	if s.closed || e == nil || e.inflight != m {
		s.logger.Debug("discarding stale interaction response",
			zap.String("kind", string(m.Key.Kind)), zap.Uint("entity_id", m.Key.EntityID), zap.Error(err))
		var current State
		if e != nil && !s.closed {
			current = e.state
		}
		m.finish(current, nil, true)
		return current, nil
	}

	var final State
	var outErr error
	switch {
	case err == nil:
		final = State{Active: m.Target.Active, Count: m.Target.Count}
		if conf != nil {
			final.Active = conf.Active
			if conf.Count != nil {
				final.Count = clamp(*conf.Count)
			}
		}
	case apperrors.IsBenign(err):
		final = State{Active: m.Target.Active, Count: m.Previous.Count}
		outErr = err
	default:
		final = m.Previous
		outErr = err
		s.logger.Info("rolling back interaction",
			zap.String("kind", string(m.Key.Kind)), zap.Uint("entity_id", m.Key.EntityID), zap.Error(err))
	}

	e.inflight = nil
	e.state = final
	s.notify(m.Key, final)
	m.finish(final, outErr, false)
	return final, outErr
}

// Toggle flips key through its remote and blocks until the request settles.
func (s *Store) Toggle(ctx context.Context, key Key) (State, error) {
	remote, err := s.remote(key.Kind)
	if err != nil {
		return State{}, err
	}
	m, err := s.Begin(key)
	if err != nil {
		current, _ := s.State(key)
		return current, err
	}
	conf, rerr := remote.Apply(ctx, key.EntityID, m.Target.Active)
	return s.Settle(m, conf, rerr)
}

// ToggleAsync applies the optimistic transition and issues the request in the
// background. The returned mutation completes when the response has settled.
func (s *Store) ToggleAsync(ctx context.Context, key Key) (*Mutation, error) {
	remote, err := s.remote(key.Kind)
	if err != nil {
		return nil, err
	}
	m, err := s.Begin(key)
	if err != nil {
		return nil, err
	}
	go func() {
		conf, rerr := remote.Apply(ctx, key.EntityID, m.Target.Active)
		s.Settle(m, conf, rerr)
	}()
	return m, nil
}

// ToggleLike likes or unlikes a post.
func (s *Store) ToggleLike(ctx context.Context, postID uint) (State, error) {
	return s.Toggle(ctx, LikeKey(postID))
}

// ToggleFollow follows or unfollows a user.
func (s *Store) ToggleFollow(ctx context.Context, userID uint) (State, error) {
	return s.Toggle(ctx, FollowKey(userID))
}

// Close marks the owning view as gone. Responses arriving afterwards are
// discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[Key]*entry)
}

func (s *Store) remote(kind Kind) (Remote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.remotes[kind]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "no remote configured for %s", kind)
	}
	return r, nil
}

func (s *Store) notify(key Key, st State) {
	if s.observer != nil {
		s.observer(key, st)
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
