package repositories

import (
	"time"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type IssueFilters struct {
	Status   *models.IssueStatus   `json:"status"`
	Category *models.IssueCategory `json:"category"`
	CourseID *uint                 `json:"course_id"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type NotificationFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

type CourseFilters struct {
	DepartmentID *uint `json:"department_id"`
	ProgrammeID  *uint `json:"programme_id"`
	Limit        int   `json:"limit"`
	Offset       int   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// IssueStats is the per-scope status breakdown served on registrar views.
type IssueStats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
}
