package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
)

type PaymentRepository interface {
	// Create participates in the caller's transaction so a purchase and its
	// notifications commit atomically.
	Create(ctx context.Context, tx *sql.Tx, payment *model.Payment) error
	// FindMatch implements the heuristic duplicate check on
	// (postId, buyerEmail, amount, quantity). Returns ErrNotFound when no
	// prior payment matches.
	FindMatch(ctx context.Context, postID, buyerEmail string, amount float64, quantity int) (*model.Payment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Payment, error)
}

type pgPaymentRepository struct {
	db *sql.DB
}

func NewPgPaymentRepository(db *sql.DB) PaymentRepository {
	return &pgPaymentRepository{db: db}
}

func (r *pgPaymentRepository) Create(ctx context.Context, tx *sql.Tx, payment *model.Payment) error {
	query := `INSERT INTO payments (id, post_id, buyer_id, buyer_name, buyer_email, quantity, amount)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		payment.ID, payment.PostID, payment.BuyerID, payment.BuyerName, payment.BuyerEmail,
		payment.Quantity, payment.Amount)
	if err != nil {
		return fmt.Errorf("pgPaymentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPaymentRepository) FindMatch(ctx context.Context, postID, buyerEmail string, amount float64, quantity int) (*model.Payment, error) {
	query := `SELECT id, post_id, buyer_id, buyer_name, buyer_email, quantity, amount, created_at, updated_at
	          FROM payments
	          WHERE post_id = $1 AND buyer_email = $2 AND amount = $3 AND quantity = $4
	          LIMIT 1`
	payment := &model.Payment{}
	err := r.db.QueryRowContext(ctx, query, postID, buyerEmail, amount, quantity).Scan(
		&payment.ID, &payment.PostID, &payment.BuyerID, &payment.BuyerName, &payment.BuyerEmail,
		&payment.Quantity, &payment.Amount, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPaymentRepository.FindMatch: %w", err)
	}
	return payment, nil
}

func (r *pgPaymentRepository) ListByPost(ctx context.Context, postID string) ([]model.Payment, error) {
	query := `SELECT id, post_id, buyer_id, buyer_name, buyer_email, quantity, amount, created_at, updated_at
	          FROM payments WHERE post_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("pgPaymentRepository.ListByPost: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var payment model.Payment
		if err := rows.Scan(
			&payment.ID, &payment.PostID, &payment.BuyerID, &payment.BuyerName, &payment.BuyerEmail,
			&payment.Quantity, &payment.Amount, &payment.CreatedAt, &payment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgPaymentRepository.ListByPost scan: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
