package model

import "time"

// Payment is an immutable ledger row for a completed purchase. Amount is
// always computed server-side from the listing price or the provider-reported
// total, never taken from the client.
type Payment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	BuyerID    string    `json:"buyer_id"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	Quantity   int       `json:"quantity"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
