package handler

import (
	"encoding/json"
	"marketplace/internal/api/middleware"
	"marketplace/internal/app/service"
	"marketplace/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(ps *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{postID}/pay", h.pay)
	r.Post("/{postID}/create-checkout-session", h.createCheckoutSession)
	r.Post("/confirm-payment", h.confirmPayment)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Get("/{postID}/payments", h.listPayments) // GET /posts/{id}/payments
	})
}

// pay records a purchase directly, without external verification. It exists
// for non-card/manual flows.
func (h *PaymentHandler) pay(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var req service.DirectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.paymentService.RecordDirect(r.Context(), postID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var req service.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.paymentService.CreateCheckoutSession(r.Context(), postID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// listPayments exposes the ledger for one listing to admins. The rows are
// immutable history; they outlive the listing itself.
func (h *PaymentHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	payments, err := h.paymentService.ListForPost(r.Context(), postID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.paymentService.ConfirmSession(r.Context(), req.SessionID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
