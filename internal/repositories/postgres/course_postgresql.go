package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/cache"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

// CoursePostgreSQL implements repositories.CourseRepository. The catalog is
// reference data maintained by academic administration, so everything here
// is read-only and cached aggressively.
type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course

	cacheKey := fmt.Sprintf("course:%d", id)
	err := r.cacheManager.Directory.CacheOrExecute(ctx, cacheKey, &course, cache.DirectoryCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.Course
		if err := r.getDB(tx).WithContext(ctx).First(&fetched, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Course{})

	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.ProgrammeID != nil {
		// Courses hang off departments; a programme filter resolves to the
		// programme's department.
		query = query.Where("department_id = (?)",
			r.getDB(tx).Model(&models.Programme{}).Select("department_id").Where("id = ?", *filters.ProgrammeID))
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var courses []*models.Course
	if err := query.Order("code ASC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}
