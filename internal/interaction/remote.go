package interaction

import (
	"context"

	"github.com/anonto42/nano-midea/social/internal/models"
)

// Confirmation is the server's answer to a toggle request.
// Count is nil when the server did not report an authoritative counter.
type Confirmation struct {
	Active bool
	Count  *int
}

// Remote issues the request that makes an interaction active or inactive.
type Remote interface {
	Apply(ctx context.Context, entityID uint, active bool) (*Confirmation, error)
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, entityID uint, active bool) (*Confirmation, error)

func (f RemoteFunc) Apply(ctx context.Context, entityID uint, active bool) (*Confirmation, error) {
	return f(ctx, entityID, active)
}

// Liker is the like/unlike endpoint pair.
type Liker interface {
	Like(ctx context.Context, postID uint) (*models.LikeStatus, error)
	Unlike(ctx context.Context, postID uint) (*models.LikeStatus, error)
}

// Follower is the follow/unfollow endpoint pair.
type Follower interface {
	Follow(ctx context.Context, userID uint) (*models.FollowStatus, error)
	Unfollow(ctx context.Context, userID uint) (*models.FollowStatus, error)
}

// LikeRemote issues like and unlike requests through l.
func LikeRemote(l Liker) Remote {
	return RemoteFunc(func(ctx context.Context, postID uint, active bool) (*Confirmation, error) {
		call := l.Unlike
		if active {
			call = l.Like
		}
		st, err := call(ctx, postID)
		if err != nil || st == nil {
			return nil, err
		}
		return &Confirmation{Active: st.IsLiked, Count: st.LikeCount}, nil
	})
}

// FollowRemote issues follow and unfollow requests through f.
func FollowRemote(f Follower) Remote {
	return RemoteFunc(func(ctx context.Context, userID uint, active bool) (*Confirmation, error) {
		call := f.Unfollow
		if active {
			call = f.Follow
		}
		st, err := call(ctx, userID)
		if err != nil || st == nil {
			return nil, err
		}
		return &Confirmation{Active: st.Following, Count: st.FollowersCount}, nil
	})
}
