package repositories

import (
	"github.com/anonto42/nano-midea/social/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations.
// Creating or deleting an edge keeps the users' follower counters in step.
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowers(userID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.User, error)
	GetFollowingIDs(userID uint) ([]uint, error)
	FilterFollowed(followerID uint, userIDs []uint) (map[uint]bool, error)
}

// PostgresFollowRepository implements FollowRepository over gorm
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow stores the edge. An existing edge yields ErrDuplicate.
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", follow.FollowerID, follow.FollowingID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(follow).Error; err != nil {
			return translate(err)
		}
		return adjustFollowCounts(tx, follow.FollowerID, follow.FollowingID, 1)
	})
}

// DeleteFollow removes the edge. A missing edge yields ErrNotFound.
func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return adjustFollowCounts(tx, followerID, followingID, -1)
	})
}

func adjustFollowCounts(tx *gorm.DB, followerID, followingID uint, delta int) error {
	if err := tx.Model(&models.User{}).Where("id = ?", followerID).
		Update("following_count", clampedAdd("following_count", delta)).Error; err != nil {
		return err
	}
	return tx.Model(&models.User{}).Where("id = ?", followingID).
		Update("followers_count", clampedAdd("followers_count", delta)).Error
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Order("username").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("following_id").Where("follower_id = ?", userID),
	).Order("username").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// FilterFollowed reports which of userIDs followerID follows.
func (r *PostgresFollowRepository) FilterFollowed(followerID uint, userIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(userIDs))
	if followerID == 0 || len(userIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, userIDs).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
