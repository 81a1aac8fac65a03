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

// UserPostgreSQL implements repositories.UserRepository.
type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User

	cacheKey := fmt.Sprintf("id:%d", id)
	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.User
		if err := r.getDB(tx).WithContext(ctx).First(&fetched, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByCasdoorID resolves the local row for an IdP identity. This sits on
// the hot path of every authenticated request, hence the cache.
func (r *UserPostgreSQL) GetByCasdoorID(ctx context.Context, tx *gorm.DB, casdoorID string) (*models.User, error) {
	var user models.User

	cacheKey := fmt.Sprintf("casdoor:%s", casdoorID)
	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.User
		err := r.getDB(tx).WithContext(ctx).
			Where("casdoor_id = ?", casdoorID).
			First(&fetched).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get user by casdoor id: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := r.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.InvalidateUserCache(ctx, r.cacheManager, user.CasdoorID)

	return nil
}

func (r *UserPostgreSQL) ListLecturersByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error) {
	var lecturers []*models.User

	cacheKey := fmt.Sprintf("lecturers:%d", departmentID)
	err := r.cacheManager.Directory.CacheOrExecute(ctx, cacheKey, &lecturers, cache.DirectoryCacheConfig.TTL, func() (interface{}, error) {
		var fetched []*models.User
		err := r.getDB(tx).WithContext(ctx).
			Where("role = ? AND department_id = ?", models.RoleLecturer, departmentID).
			Order("last_name ASC, first_name ASC").
			Find(&fetched).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list lecturers: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return lecturers, nil
}
