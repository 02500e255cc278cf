package service

import (
	"context"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
	"marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type CreatePostRequest struct {
	Title   string
	Content string
	Price   float64
	Image   *string // public path set by the handler after saving the upload
}

type UpdatePostRequest struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Image   *string  `json:"image,omitempty"`
}

func (s *PostService) CreatePost(ctx context.Context, creatorID string, req CreatePostRequest) (*model.Post, error) {
	if req.Title == "" || req.Content == "" {
		return nil, common.Errorf("title and content are required: %w", common.ErrBadRequest)
	}
	if req.Price < 0 {
		return nil, common.Errorf("price must not be negative: %w", common.ErrValidation)
	}

	post := &model.Post{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Content:     req.Content,
		Price:       req.Price,
		Image:       req.Image,
		CreatedByID: creatorID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, common.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id string, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, common.Errorf("title must not be empty: %w", common.ErrValidation)
		}
		post.Title = *req.Title
		post.Slug = slug.Make(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, common.Errorf("price must not be negative: %w", common.ErrValidation)
		}
		post.Price = *req.Price
	}
	if req.Image != nil {
		post.Image = req.Image
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, common.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	// Historical payments for the post are kept; the ledger has no cascade.
	return s.postRepo.Delete(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	return s.postRepo.ListNewestFirst(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}
