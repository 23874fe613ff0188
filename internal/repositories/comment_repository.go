package repositories

import (
	"github.com/anonto42/nano-midea/social/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByPostID(postID uint) ([]models.Comment, error)
	GetDescendants(id uint) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteCommentTree(id uint) (int64, error)
	DeleteCommentsByPostID(postID uint) error
}

// PostgresCommentRepository implements CommentRepository over gorm
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// GetCommentsByPostID returns the comments of a post flat, in creation order.
func (r *PostgresCommentRepository) GetCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Where("post_id = ?", postID).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// GetDescendants returns every comment below id, level by level.
func (r *PostgresCommentRepository) GetDescendants(id uint) ([]models.Comment, error) {
	var out []models.Comment
	frontier := []uint{id}
	for len(frontier) > 0 {
		var level []models.Comment
		if err := r.db.Where("parent_id IN ?", frontier).Order("created_at, id").Find(&level).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range level {
			frontier = append(frontier, c.ID)
		}
		out = append(out, level...)
	}
	return out, nil
}

func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteCommentTree deletes the comment id and all of its replies and returns
// how many comments were removed.
func (r *PostgresCommentRepository) DeleteCommentTree(id uint) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ids := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var next []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
				return err
			}
			ids = append(ids, next...)
			frontier = next
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}

func (r *PostgresCommentRepository) DeleteCommentsByPostID(postID uint) error {
	return r.db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}
