package handler

import (
	"marketplace/internal/api/middleware"
	"marketplace/internal/app/service"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(ns *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications/user/{who}", h.listForUser)
	r.Post("/notifications/{noteID}/read", h.markRead)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Get("/notifications/admin", h.listForAdmin)
	})
}

func (h *NotificationHandler) listForAdmin(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notificationService.ListForAdmin(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) listForUser(w http.ResponseWriter, r *http.Request) {
	who := chi.URLParam(r, "who")

	notes, err := h.notificationService.ListFor(r.Context(), who)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	note, err := h.notificationService.MarkRead(r.Context(), noteID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type markReadResponse struct {
		Msg  string              `json:"msg"`
		Note *model.Notification `json:"note"`
	}
	common.RespondWithJSON(w, http.StatusOK, markReadResponse{Msg: "Marked read", Note: note})
}
