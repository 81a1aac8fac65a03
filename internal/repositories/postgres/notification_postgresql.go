package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

// NotificationPostgreSQL implements repositories.NotificationRepository.
// Notifications are always read scoped to their owner, so no caching: the
// unread badge must reflect writes immediately.
type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{db: db}
}

func (r *NotificationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *NotificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	if err := r.getDB(tx).WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *NotificationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)

	if filters.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var notifications []*models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flips is_read only when the row belongs to userID, so a user
// cannot acknowledge someone else's notification by guessing IDs.
func (r *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *NotificationPostgreSQL) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64

	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
