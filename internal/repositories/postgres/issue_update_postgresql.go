package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

// IssueUpdatePostgreSQL implements repositories.IssueUpdateRepository. The
// trail is append-only, so there is nothing to cache: rows never change
// after insert and reads ride along with GetByIDWithDetails.
type IssueUpdatePostgreSQL struct {
	db *gorm.DB
}

func NewIssueUpdatePostgreSQL(db *gorm.DB) repositories.IssueUpdateRepository {
	return &IssueUpdatePostgreSQL{db: db}
}

func (r *IssueUpdatePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *IssueUpdatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, update *models.IssueUpdate) error {
	if err := r.getDB(tx).WithContext(ctx).Create(update).Error; err != nil {
		return fmt.Errorf("failed to create issue update: %w", err)
	}

	return nil
}

func (r *IssueUpdatePostgreSQL) ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.IssueUpdate, error) {
	var updates []*models.IssueUpdate

	err := r.getDB(tx).WithContext(ctx).
		Where("issue_id = ?", issueID).
		Preload("User").
		Order("created_at ASC").
		Find(&updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list issue updates: %w", err)
	}

	return updates, nil
}
