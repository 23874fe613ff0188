package models

import "time"

// Follow represents a directed follow edge. The pair is unique and never self-referencing.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"-"`
}

// FollowStatus is the confirmed follow state of a target user.
// FollowersCount is the authoritative follower count of the target when the server reports it.
type FollowStatus struct {
	Following      bool `json:"following"`
	FollowersCount *int `json:"followers_count,omitempty"`
}
