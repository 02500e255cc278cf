package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	ListNewestFirst(ctx context.Context) ([]model.Post, error)
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

func (r *pgPostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (id, title, slug, content, price, image, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Price, post.Image, post.CreatedByID)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts
	          SET title = $2, slug = $3, content = $4, price = $5, image = $6, updated_at = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Price, post.Image)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPostRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT id, title, slug, content, price, image, created_by, created_at, updated_at
	          FROM posts WHERE id = $1`
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Price, &post.Image,
		&post.CreatedByID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPostRepository.FindByID: %w", err)
	}
	return post, nil
}

func (r *pgPostRepository) ListNewestFirst(ctx context.Context) ([]model.Post, error) {
	query := `SELECT id, title, slug, content, price, image, created_by, created_at, updated_at
	          FROM posts ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.ListNewestFirst: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Content, &post.Price, &post.Image,
			&post.CreatedByID, &post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgPostRepository.ListNewestFirst scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
