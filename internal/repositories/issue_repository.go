package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// IssueRepository persists issues. All list operations return issues
// most-recent-first by created_at.
type IssueRepository interface {
	Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error)

	List(ctx context.Context, tx *gorm.DB, filters IssueFilters) ([]*models.Issue, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters IssueFilters) ([]*models.Issue, int64, error)
	ListByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters IssueFilters) ([]*models.Issue, int64, error)
	ListByCollege(ctx context.Context, tx *gorm.DB, collegeID uint, filters IssueFilters) ([]*models.Issue, int64, error)

	// TransitionStatus performs a compare-and-swap on the issue's status:
	// the row is updated only if its current status equals from. When
	// assigneeID is non-nil it is written in the same statement, so
	// assignment and the in_progress transition are atomic. Returns false
	// when the precondition did not hold (row gone or status moved), which
	// is how racing transitions lose.
	TransitionStatus(ctx context.Context, tx *gorm.DB, issueID uint, from, to models.IssueStatus, assigneeID *uint) (bool, error)

	StatsByCollege(ctx context.Context, tx *gorm.DB, collegeID uint) (*IssueStats, error)
}

// IssueUpdateRepository persists the append-only comment trail. There are
// deliberately no update or delete methods.
type IssueUpdateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, update *models.IssueUpdate) error
	ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.IssueUpdate, error)
}
