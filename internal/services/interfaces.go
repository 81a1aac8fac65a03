package services

import (
	"context"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateIssueRequest = validator.IssueCreateRequest
type AssignIssueRequest = validator.AssignRequest
type IssueCommentRequest = validator.IssueCommentRequest

// ListIssuesRequest carries the optional query filters accepted by every
// list endpoint. Scope (mine/assigned/college) comes from the route and the
// actor's role, never from the payload.
type ListIssuesRequest struct {
	Status   *models.IssueStatus
	Category *models.IssueCategory
	CourseID *uint
	Page     int
	Size     int
}

// IssueResponse decorates an issue with the actions the requesting actor
// may take on it, so clients don't re-implement the policy.
type IssueResponse struct {
	*models.Issue
	CanMarkInProgress bool `json:"can_mark_in_progress"`
	CanAssign         bool `json:"can_assign"`
	CanResolve        bool `json:"can_resolve"`
	CanComment        bool `json:"can_comment"`
}

type IssueListResponse struct {
	Issues []*IssueResponse `json:"issues"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Unread        int64                  `json:"unread"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

// ===== SERVICE INTERFACES =====

// IssueService implements the issue workflow: submission, triage,
// assignment, resolution and the append-only update trail. Every method
// takes the authenticated actor explicitly; services never reach into
// request context for identity.
type IssueService interface {
	Create(ctx context.Context, req *CreateIssueRequest, actor *models.User) (*IssueResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error)

	List(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error)
	ListMine(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error)
	ListAssigned(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error)
	ListHistory(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error)

	MarkInProgress(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error)
	Assign(ctx context.Context, id uint, req *AssignIssueRequest, actor *models.User) (*IssueResponse, error)
	Resolve(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error)

	AddUpdate(ctx context.Context, id uint, req *IssueCommentRequest, actor *models.User) (*models.IssueUpdate, error)
	ListUpdates(ctx context.Context, id uint, actor *models.User) ([]*models.IssueUpdate, error)

	Stats(ctx context.Context, actor *models.User) (*repositories.IssueStats, error)
}

// NotificationService serves the in-app notifications written by workflow
// transition hooks.
type NotificationService interface {
	List(ctx context.Context, actor *models.User, unreadOnly bool, page, size int) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, id uint, actor *models.User) error
	UnreadCount(ctx context.Context, actor *models.User) (int64, error)
}

// DirectoryService serves the read-only reference data used to populate
// submission and assignment forms.
type DirectoryService interface {
	ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error)
	ListLecturers(ctx context.Context, departmentID uint, actor *models.User) ([]*models.User, error)
}

// ServiceManager wires and owns all service instances.
type ServiceManager interface {
	Issue() IssueService
	Notification() NotificationService
	Directory() DirectoryService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
