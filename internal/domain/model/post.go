package model

import (
	"time"
)

// Post is a sellable listing. Price is in dollars; the ledger computes
// purchase amounts from it server-side.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Price       float64   `json:"price"`
	Image       *string   `json:"image,omitempty"` // public path under /uploads
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
