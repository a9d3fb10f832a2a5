package repository

import (
	"context"

	"gorm.io/gorm"

	"postboard/internal/model"
)

// PostRepository defines persistence operations on post records. The empty
// string for category means no filter; matching is case-insensitive.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint, category string) (*model.Post, error)
	List(ctx context.Context, offset, limit int, category string) ([]model.Post, error)
	Count(ctx context.Context, category string) (int64, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository builds a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// ownerEmail narrows the preloaded owner to id and email.
func ownerEmail(db *gorm.DB) *gorm.DB {
	return db.Select("id", "email")
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint, category string) (*model.Post, error) {
	q := r.db.WithContext(ctx).Preload("User", ownerEmail).Where("id = ?", id)
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	var post model.Post
	if err := q.First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, offset, limit int, category string) ([]model.Post, error) {
	q := r.db.WithContext(ctx).Preload("User", ownerEmail).
		Order("created_at DESC").Offset(offset).Limit(limit)
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	var posts []model.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, category string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Updates(fields).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, id).Error
}
