package repositories

import (
	"github.com/anonto42/nano-midea/social/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(postID, userID uint) error
	HasUserLikedPost(postID, userID uint) (bool, error)
	GetLikesCountByPostID(postID uint) (int64, error)
	GetLikedPostIDs(userID uint) ([]uint, error)
	FilterLiked(userID uint, postIDs []uint) (map[uint]bool, error)
	DeleteLikesByPostID(postID uint) error
}

// PostgresLikeRepository implements LikeRepository over gorm
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike stores a like. A second like of the same post yields ErrDuplicate.
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	liked, err := r.HasUserLikedPost(like.PostID, like.UserID)
	if err != nil {
		return err
	}
	if liked {
		return ErrDuplicate
	}
	return translate(r.db.Create(like).Error)
}

// DeleteLike removes a like. A missing like yields ErrNotFound.
func (r *PostgresLikeRepository) DeleteLike(postID, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(postID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetLikedPostIDs returns the posts userID liked, most recent like first.
func (r *PostgresLikeRepository) GetLikedPostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Like{}).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Pluck("post_id", &ids).Error
	return ids, err
}

// FilterLiked reports which of postIDs userID liked.
func (r *PostgresLikeRepository) FilterLiked(userID uint, postIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostgresLikeRepository) DeleteLikesByPostID(postID uint) error {
	return r.db.Where("post_id = ?", postID).Delete(&models.Like{}).Error
}
