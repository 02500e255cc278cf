package service

import (
	"context"
	"marketplace/internal/domain/model"
	"marketplace/internal/domain/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) ListForAdmin(ctx context.Context) ([]model.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, model.RecipientAdmin)
}

// ListFor returns notifications whose recipient equals who exactly (a user id
// or an email); there is no normalization.
func (s *NotificationService) ListFor(ctx context.Context, who string) ([]model.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, who)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, id)
}
