package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-midea/social/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// PostQuery selects posts, newest first.
// Nil AuthorIDs or IDs mean no restriction on that field.
type PostQuery struct {
	AuthorIDs       []uint
	IDs             []uint
	IncludeArchived bool
	Offset          int
	Limit           int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	// AdjustLikeCount adds delta to the like counter, never below zero, and
	// returns the new value.
	AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error)
	AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error)
}

const (
	likeCountField    = "like_count"
	commentCountField = "comment_count"
)

// clampedAdd is the SQL expression col + delta floored at zero.
func clampedAdd(column string, delta int) any {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
}

// PostgresPostRepository implements PostRepository over gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *PostgresPostRepository) FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	tx := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if !q.IncludeArchived {
		tx = tx.Where("archived = ?", false)
	}
	if q.AuthorIDs != nil {
		tx = tx.Where("author_id IN ?", q.AuthorIDs)
	}
	if q.IDs != nil {
		tx = tx.Where("id IN ?", q.IDs)
	}
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}
	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error) {
	return r.adjust(ctx, id, likeCountField, delta)
}

func (r *PostgresPostRepository) AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error) {
	return r.adjust(ctx, id, commentCountField, delta)
}

func (r *PostgresPostRepository) adjust(ctx context.Context, id uint, column string, delta int) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).Update(column, clampedAdd(column, delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ?", id).Select(column).Scan(&value).Error
	})
	return value, err
}

// MongoPostRepository implements PostRepository for MongoDB.
// Post ids are integers drawn from a counter document so that they match the
// relational tables holding likes and comments.
type MongoPostRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection("posts"),
		counters:   db.Collection("counters"),
	}
}

func (r *MongoPostRepository) nextID(ctx context.Context) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": "posts"}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocating post id: %w", err)
	}
	return uint(counter.Seq), nil
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	post.ID = id
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err = r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	filter := bson.M{}
	if !q.IncludeArchived {
		filter["archived"] = false
	}
	if q.AuthorIDs != nil {
		filter["author_id"] = bson.M{"$in": q.AuthorIDs}
	}
	if q.IDs != nil {
		filter["_id"] = bson.M{"$in": q.IDs}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if q.Limit > 0 {
		findOptions.SetSkip(int64(q.Offset)).SetLimit(int64(q.Limit))
	}
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"image":      post.Image,
			"archived":   post.Archived,
			"edited":     post.Edited,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) DeletePost(ctx context.Context, id uint) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error) {
	return r.adjust(ctx, id, likeCountField, delta)
}

func (r *MongoPostRepository) AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error) {
	return r.adjust(ctx, id, commentCountField, delta)
}

func (r *MongoPostRepository) adjust(ctx context.Context, id uint, field string, delta int) (int, error) {
	sum := bson.D{{Key: "$add", Value: bson.A{"$" + field, delta}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$max", Value: bson.A{0, sum}}}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if field == likeCountField {
		return post.LikeCount, nil
	}
	return post.CommentCount, nil
}
