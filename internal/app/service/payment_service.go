package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
	"marketplace/internal/domain/repository"
	"marketplace/internal/platform/config"
	"marketplace/internal/platform/payment"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// SessionLocker serializes confirmation of a single checkout session. Without
// it, two concurrent confirmations could both pass the duplicate check and
// both insert.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string)
}

// PaymentService orchestrates the purchase workflow: direct ledger records,
// hosted checkout session creation, and post-redirect confirmation. The
// checkout provider is injected at construction and may be nil when no
// provider credentials are configured.
type PaymentService struct {
	paymentRepo      repository.PaymentRepository
	notificationRepo repository.NotificationRepository
	postRepo         repository.PostRepository
	provider         payment.CheckoutProvider
	lock             SessionLocker
	db               *sql.DB
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	notificationRepo repository.NotificationRepository,
	postRepo repository.PostRepository,
	provider payment.CheckoutProvider,
	lock SessionLocker,
	db *sql.DB,
) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		notificationRepo: notificationRepo,
		postRepo:         postRepo,
		provider:         provider,
		lock:             lock,
		db:               db,
	}
}

type BuyerInfo struct {
	BuyerID    string `json:"buyerId"`
	BuyerName  string `json:"buyerName"`
	BuyerEmail string `json:"buyerEmail"`
}

type DirectPaymentRequest struct {
	Quantity int `json:"quantity"`
	BuyerInfo
}

type CheckoutSessionRequest struct {
	Quantity int `json:"quantity"`
	BuyerInfo
}

type CheckoutSessionResponse struct {
	SessionID      string `json:"sessionId"`
	PublishableKey string `json:"publishableKey"`
}

type PaymentResult struct {
	Msg       string  `json:"msg"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
}

// RecordDirect writes a ledger row for a non-card/manual purchase. It trusts
// the caller's claim that payment occurred and is deliberately not guarded
// against replay; every call records a new purchase.
func (s *PaymentService) RecordDirect(ctx context.Context, postID string, req DirectPaymentRequest) (*PaymentResult, error) {
	if req.Quantity < 1 {
		return nil, common.Errorf("invalid quantity: %w", common.ErrBadRequest)
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("post not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load post %s: %w", postID, err)
	}

	amount := roundToCents(post.Price * float64(req.Quantity))

	paymentRow, err := s.recordPurchase(ctx, post, req.BuyerInfo, req.Quantity, amount)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Msg: "Payment recorded", PaymentID: paymentRow.ID, Amount: amount}, nil
}

// CreateCheckoutSession asks the hosted provider for a checkout page. The
// line-item price comes from the server-held post price; the metadata payload
// makes the confirmation step self-contained.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, postID string, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if s.provider == nil {
		return nil, payment.ErrNotConfigured
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("post not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load post %s: %w", postID, err)
	}

	origin := config.AppConfig.AppURL
	sess, err := s.provider.CreateSession(ctx, payment.CreateSessionInput{
		Title:           post.Title,
		Description:     post.Content,
		UnitAmountCents: int64(math.Round(post.Price * 100)),
		Quantity:        int64(qty),
		SuccessURL:      origin + "/payment-success.html?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       origin + "/",
		Metadata: map[string]string{
			"postId":     post.ID,
			"buyerId":    req.BuyerID,
			"buyerName":  req.BuyerName,
			"buyerEmail": req.BuyerEmail,
			"quantity":   strconv.Itoa(qty),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSessionResponse{
		SessionID:      sess.ID,
		PublishableKey: s.provider.PublishableKey(),
	}, nil
}

// ConfirmSession reconciles a provider session against the ledger after the
// success redirect. Only sessions the provider reports as paid have side
// effects. Duplicate suppression is a heuristic match on
// (postId, buyerEmail, amount, quantity): two legitimate purchases with
// identical fields collide and the second is treated as already recorded.
func (s *PaymentService) ConfirmSession(ctx context.Context, sessionID string) (*PaymentResult, error) {
	if s.provider == nil {
		return nil, payment.ErrNotConfigured
	}
	if sessionID == "" {
		return nil, common.Errorf("missing sessionId: %w", common.ErrBadRequest)
	}

	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire confirmation lock for session %s: %w", sessionID, err)
		}
		if !ok {
			return nil, common.Errorf("session %s is already being confirmed: %w", sessionID, common.ErrLockContention)
		}
		defer s.lock.Release(ctx, sessionID)
	}

	sess, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, common.Errorf("session not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve session %s: %w", sessionID, err)
	}
	if !sess.Paid {
		return nil, common.Errorf("payment not completed: %w", common.ErrBadRequest)
	}

	meta := sess.Metadata
	post, err := s.postRepo.FindByID(ctx, meta["postId"])
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("post not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load post %s: %w", meta["postId"], err)
	}

	qty, err := strconv.Atoi(meta["quantity"])
	if err != nil || qty < 1 {
		qty = 1
	}

	// Amount from the provider-reported total, falling back to the listing
	// price. Client input never reaches this computation. Rounded to cents so
	// the value always survives the ledger's two-decimal column unchanged and
	// the duplicate match below keeps working on a reconfirmation.
	amount := roundToCents(post.Price * float64(qty))
	if sess.AmountTotalCents > 0 {
		amount = roundToCents(float64(sess.AmountTotalCents) / 100)
	}

	buyer := BuyerInfo{
		BuyerID:    meta["buyerId"],
		BuyerName:  meta["buyerName"],
		BuyerEmail: meta["buyerEmail"],
	}

	existing, err := s.paymentRepo.FindMatch(ctx, post.ID, buyer.BuyerEmail, amount, qty)
	if err == nil {
		log.Printf("Session %s matched existing payment %s; not inserting again", sessionID, existing.ID)
		return &PaymentResult{Msg: "Already recorded", PaymentID: existing.ID, Amount: amount}, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing payment: %w", err)
	}

	paymentRow, err := s.recordPurchase(ctx, post, buyer, qty, amount)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Msg: "Payment recorded", PaymentID: paymentRow.ID, Amount: amount}, nil
}

// ListForPost returns the ledger rows for one listing, newest-first. Rows
// survive deletion of the listing itself.
func (s *PaymentService) ListForPost(ctx context.Context, postID string) ([]model.Payment, error) {
	return s.paymentRepo.ListByPost(ctx, postID)
}

// roundToCents keeps amounts on the two-decimal grid of the ledger column.
// Amounts must be rounded before both insert and duplicate match, otherwise a
// float like 30.299999999999997 never equals its stored form 30.30.
func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// recordPurchase writes the ledger row and both notifications in one
// transaction, so a purchase is never recorded without its notifications.
func (s *PaymentService) recordPurchase(ctx context.Context, post *model.Post, buyer BuyerInfo, qty int, amount float64) (*model.Payment, error) {
	paymentRow := &model.Payment{
		ID:         uuid.NewString(),
		PostID:     post.ID,
		BuyerID:    buyer.BuyerID,
		BuyerName:  buyer.BuyerName,
		BuyerEmail: buyer.BuyerEmail,
		Quantity:   qty,
		Amount:     amount,
	}

	adminMeta, err := json.Marshal(map[string]interface{}{
		"postId":     post.ID,
		"buyerId":    buyer.BuyerID,
		"buyerName":  buyer.BuyerName,
		"buyerEmail": buyer.BuyerEmail,
		"quantity":   qty,
		"amount":     amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal admin notification meta: %w", err)
	}
	buyerMeta, err := json.Marshal(map[string]interface{}{
		"postId":   post.ID,
		"quantity": qty,
		"amount":   amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal buyer notification meta: %w", err)
	}

	buyerRecipient := buyer.BuyerID
	if buyerRecipient == "" {
		buyerRecipient = buyer.BuyerEmail
	}
	if buyerRecipient == "" {
		buyerRecipient = "unknown"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.paymentRepo.Create(ctx, tx, paymentRow); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	adminNote := &model.Notification{
		ID:        uuid.NewString(),
		Recipient: model.RecipientAdmin,
		Message:   "Payment received for " + post.Title,
		Meta:      adminMeta,
	}
	if err := s.notificationRepo.Create(ctx, tx, adminNote); err != nil {
		return nil, fmt.Errorf("failed to create admin notification: %w", err)
	}

	buyerNote := &model.Notification{
		ID:        uuid.NewString(),
		Recipient: buyerRecipient,
		Message:   "Payment successful for " + post.Title,
		Meta:      buyerMeta,
	}
	if err := s.notificationRepo.Create(ctx, tx, buyerNote); err != nil {
		return nil, fmt.Errorf("failed to create buyer notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	log.Printf("Recorded payment %s for post %s (qty %d, amount %.2f)", paymentRow.ID, post.ID, qty, amount)
	return paymentRow, nil
}
