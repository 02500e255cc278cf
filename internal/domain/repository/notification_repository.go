package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
)

type NotificationRepository interface {
	// Create participates in the caller's transaction; a purchase and its
	// notifications commit or roll back together.
	Create(ctx context.Context, tx *sql.Tx, note *model.Notification) error
	ListByRecipient(ctx context.Context, recipient string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, tx *sql.Tx, note *model.Notification) error {
	query := `INSERT INTO notifications (id, recipient, message, meta, read)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, note.ID, note.Recipient, note.Message, note.Meta, note.Read)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]model.Notification, error) {
	query := `SELECT id, recipient, message, meta, read, created_at, updated_at
	          FROM notifications WHERE recipient = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, recipient)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByRecipient: %w", err)
	}
	defer rows.Close()

	notes := []model.Notification{}
	for rows.Next() {
		var note model.Notification
		if err := rows.Scan(
			&note.ID, &note.Recipient, &note.Message, &note.Meta, &note.Read,
			&note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.ListByRecipient scan: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	query := `UPDATE notifications SET read = TRUE, updated_at = NOW()
	          WHERE id = $1
	          RETURNING id, recipient, message, meta, read, created_at, updated_at`
	note := &model.Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID, &note.Recipient, &note.Message, &note.Meta, &note.Read,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgNotificationRepository.MarkRead: %w", err)
	}
	return note, nil
}
