package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/cache"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

// IssuePostgreSQL implements repositories.IssueRepository.
type IssuePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewIssuePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.IssueRepository {
	return &IssuePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *IssuePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *IssuePostgreSQL) Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error {
	if err := r.getDB(tx).WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	cache.InvalidateIssueCache(ctx, r.cacheManager, issue.ID)

	return nil
}

func (r *IssuePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	var issue models.Issue

	cacheKey := fmt.Sprintf("id:%d", id)
	err := r.cacheManager.Issue.CacheOrExecute(ctx, cacheKey, &issue, cache.IssueCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.Issue
		if err := r.getDB(tx).WithContext(ctx).First(&fetched, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get issue: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &issue, nil
}

func (r *IssuePostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	var issue models.Issue

	cacheKey := fmt.Sprintf("details:%d", id)
	err := r.cacheManager.Issue.CacheOrExecute(ctx, cacheKey, &issue, cache.IssueCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.Issue
		err := r.getDB(tx).WithContext(ctx).
			Preload("Student").
			Preload("Course").
			Preload("AssignedTo").
			Preload("Updates", func(db *gorm.DB) *gorm.DB {
				return db.Order("issue_updates.created_at ASC").Preload("User")
			}).
			First(&fetched, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get issue with details: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &issue, nil
}

// applyFilters narrows an issue query by the optional filter fields.
func applyIssueFilters(query *gorm.DB, filters repositories.IssueFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("issues.status = ?", *filters.Status)
	}
	if filters.Category != nil {
		query = query.Where("issues.category = ?", *filters.Category)
	}
	if filters.CourseID != nil {
		query = query.Where("issues.course_id = ?", *filters.CourseID)
	}
	if filters.DateFrom != nil {
		query = query.Where("issues.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("issues.created_at <= ?", *filters.DateTo)
	}

	return query
}

func (r *IssuePostgreSQL) listIssues(ctx context.Context, query *gorm.DB, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	query = applyIssueFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var issues []*models.Issue
	err := query.
		Preload("Student").
		Preload("Course").
		Preload("AssignedTo").
		Order("issues.created_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	return issues, total, nil
}

func (r *IssuePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Issue{})
	return r.listIssues(ctx, query, filters)
}

func (r *IssuePostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Issue{}).
		Where("issues.student_id = ?", studentID)
	return r.listIssues(ctx, query, filters)
}

func (r *IssuePostgreSQL) ListByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Issue{}).
		Where("issues.assigned_to_id = ?", assigneeID)
	return r.listIssues(ctx, query, filters)
}

// ListByCollege scopes issues through the submitting student's college.
func (r *IssuePostgreSQL) ListByCollege(ctx context.Context, tx *gorm.DB, collegeID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Issue{}).
		Joins("JOIN users AS students ON students.id = issues.student_id").
		Where("students.college_id = ?", collegeID)
	return r.listIssues(ctx, query, filters)
}

// TransitionStatus is the compare-and-swap behind every workflow
// transition. The UPDATE carries the expected current status in its WHERE
// clause, so concurrent callers racing for the same transition see exactly
// one winner; the rest get RowsAffected == 0 and return false.
func (r *IssuePostgreSQL) TransitionStatus(ctx context.Context, tx *gorm.DB, issueID uint, from, to models.IssueStatus, assigneeID *uint) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if assigneeID != nil {
		updates["assigned_to_id"] = *assigneeID
	}

	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ? AND status = ?", issueID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition issue status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	cache.InvalidateIssueCache(ctx, r.cacheManager, issueID)

	return true, nil
}

func (r *IssuePostgreSQL) StatsByCollege(ctx context.Context, tx *gorm.DB, collegeID uint) (*repositories.IssueStats, error) {
	var stats repositories.IssueStats

	cacheKey := fmt.Sprintf("college:%d", collegeID)
	err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		type statusCount struct {
			Status models.IssueStatus
			Count  int64
		}

		var counts []statusCount
		err := r.getDB(tx).WithContext(ctx).
			Model(&models.Issue{}).
			Select("issues.status AS status, COUNT(*) AS count").
			Joins("JOIN users AS students ON students.id = issues.student_id").
			Where("students.college_id = ?", collegeID).
			Group("issues.status").
			Scan(&counts).Error
		if err != nil {
			return nil, fmt.Errorf("failed to compute issue stats: %w", err)
		}

		var fetched repositories.IssueStats
		for _, c := range counts {
			fetched.Total += c.Count
			switch c.Status {
			case models.StatusOpen:
				fetched.Open = c.Count
			case models.StatusInProgress:
				fetched.InProgress = c.Count
			case models.StatusResolved:
				fetched.Resolved = c.Count
			}
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
