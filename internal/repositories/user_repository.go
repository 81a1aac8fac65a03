package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// UserRepository reads user rows and provisions the row backing an external
// IdP identity on first sight. Credentials and token issuance live in the
// identity provider, not here.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByCasdoorID(ctx context.Context, tx *gorm.DB, casdoorID string) (*models.User, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	ListLecturersByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error)
}

// CourseRepository serves the read-only course catalog used to populate
// issue submissions.
type CourseRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, error)
}
