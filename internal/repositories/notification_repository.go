package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// NotificationRepository persists the in-app notifications written by
// workflow transition hooks.
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters NotificationFilters) ([]*models.Notification, int64, error)

	// MarkRead flips is_read for the given notification when it belongs to
	// userID; returns false when no such row exists.
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error)
	CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}
