package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "postboard/internal/errors"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

const (
	defaultPageSize = 7
	maxPageSize     = 100
)

// ListPostsInput carries pagination and the optional category filter.
type ListPostsInput struct {
	Page     int
	Limit    int
	Category string
}

// CreatePostInput is the payload for post creation.
type CreatePostInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
}

// UpdatePostInput applies only the fields supplied; nil pointers leave the
// stored values untouched.
type UpdatePostInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// Pagination is the metadata returned alongside a post listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPosts   int64 `json:"totalPosts"`
	TotalPages   int   `json:"totalPages"`
	PostsPerPage int   `json:"postsPerPage"`
}

// PostService provides ownership-scoped CRUD over posts. Only the creator of
// a post may update or delete it; reads are open.
type PostService interface {
	List(ctx context.Context, in ListPostsInput) ([]model.Post, *Pagination, error)
	Get(ctx context.Context, id uint, category string) (*model.Post, error)
	Create(ctx context.Context, userID uint, in CreatePostInput) (*model.Post, error)
	Update(ctx context.Context, userID, id uint, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, userID, id uint) error
}

type postService struct {
	posts repository.PostRepository
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

// List returns a page of posts, newest first. Page below 1 reads as page 1;
// the page size is clamped to [1, 100] with a default of 7.
func (s *postService) List(ctx context.Context, in ListPostsInput) ([]model.Post, *Pagination, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	} else if limit > maxPageSize {
		limit = maxPageSize
	}

	category := strings.TrimSpace(in.Category)

	posts, err := s.posts.List(ctx, (page-1)*limit, limit, category)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	total, err := s.posts.Count(ctx, category)
	if err != nil {
		return nil, nil, fmt.Errorf("count posts: %w", err)
	}

	return posts, &Pagination{
		CurrentPage:  page,
		TotalPosts:   total,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
		PostsPerPage: limit,
	}, nil
}

// Get returns a single post, optionally narrowed by a case-insensitive
// category match.
func (s *postService) Get(ctx context.Context, id uint, category string) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id, strings.TrimSpace(category))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// Create persists a new post owned by the requester.
func (s *postService) Create(ctx context.Context, userID uint, in CreatePostInput) (*model.Post, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		UserID:      userID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Update applies the supplied fields to a post the requester owns.
func (s *postService) Update(ctx context.Context, userID, id uint, in UpdatePostInput) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id, "")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post.UserID != userID {
		return nil, apperrors.ErrPostForbidden
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		fields["category"] = strings.TrimSpace(*in.Category)
	}
	if len(fields) > 0 {
		if err := s.posts.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
	}

	updated, err := s.posts.FindByID(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return updated, nil
}

// Delete removes a post the requester owns.
func (s *postService) Delete(ctx context.Context, userID, id uint) error {
	post, err := s.posts.FindByID(ctx, id, "")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	if post.UserID != userID {
		return apperrors.ErrPostForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
