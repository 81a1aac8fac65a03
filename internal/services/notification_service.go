package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

type notificationService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// List returns the actor's notifications only; there is no cross-user read
// path at all.
func (s *notificationService) List(ctx context.Context, actor *models.User, unreadOnly bool, page, size int) (*NotificationListResponse, error) {
	page, size = normalizePaging(page, size)

	filters := repositories.NotificationFilters{
		UnreadOnly: unreadOnly,
		Limit:      size,
		Offset:     (page - 1) * size,
	}

	notifications, total, err := s.repo.Notification().ListByUser(ctx, nil, actor.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().CountUnread(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, actor *models.User) error {
	ok, err := s.repo.Notification().MarkRead(ctx, nil, id, actor.ID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		// Either the row does not exist or it belongs to someone else;
		// both look the same to the caller.
		return ErrNotificationNotFound
	}

	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	count, err := s.repo.Notification().CountUnread(ctx, nil, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
