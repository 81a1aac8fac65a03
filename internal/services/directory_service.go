package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

type directoryService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDirectoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DirectoryService {
	return &directoryService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *directoryService) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	if filters.Limit <= 0 || filters.Limit > maxPageSize {
		filters.Limit = maxPageSize
	}

	courses, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}

// ListLecturers serves the assignment picker, so only triage roles may
// call it.
func (s *directoryService) ListLecturers(ctx context.Context, departmentID uint, actor *models.User) ([]*models.User, error) {
	if !actor.Role.CanTriage() {
		return nil, NewPermissionError(actor.ID, departmentID, "directory", "list_lecturers", "triage roles only")
	}

	lecturers, err := s.repo.User().ListLecturersByDepartment(ctx, nil, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lecturers: %w", err)
	}

	return lecturers, nil
}
