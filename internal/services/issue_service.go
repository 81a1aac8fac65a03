package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/events"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

type issueService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewIssueService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) IssueService {
	return &issueService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

// ===== SUBMISSION =====

func (s *issueService) Create(ctx context.Context, req *CreateIssueRequest, actor *models.User) (*IssueResponse, error) {
	s.logger.Info("Creating issue", "actor_id", actor.ID, "category", req.Category)

	if errs := s.validator.GetBusinessValidator().ValidateIssueCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if !actor.Role.CanSubmitIssue() {
		return nil, NewPermissionError(actor.ID, 0, "issue", "create", "only students report issues")
	}

	if _, err := s.repo.Course().GetByID(ctx, nil, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to check course: %w", err)
	}

	// The submitting student is always the actor; a student cannot file on
	// behalf of someone else.
	issue := &models.Issue{
		Category:    req.Category,
		Description: req.Description,
		YearOfStudy: req.YearOfStudy,
		Semester:    req.Semester,
		Status:      models.StatusOpen,
		StudentID:   actor.ID,
		CourseID:    req.CourseID,
	}

	if err := s.repo.Issue().Create(ctx, nil, issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	s.logger.Info("Issue created", "issue_id", issue.ID, "student_id", actor.ID)

	s.publishIssueEvent(ctx, events.EventIssueCreated, issue, actor.ID)

	return s.GetByID(ctx, issue.ID, actor)
}

// ===== READS =====

func (s *issueService) GetByID(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error) {
	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canViewIssue(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "read", "outside actor's scope")
	}

	return s.buildIssueResponse(actor, issue), nil
}

// List is the general listing, scoped by the actor's role: students get
// their own submissions, lecturers their assignments, registrars their
// college.
func (s *issueService) List(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error) {
	filters := toIssueFilters(req)

	switch actor.Role {
	case models.RoleStudent:
		issues, total, err := s.repo.Issue().ListByStudent(ctx, nil, actor.ID, filters)
		return s.buildListResponse(actor, issues, total, req, err)
	case models.RoleLecturer:
		issues, total, err := s.repo.Issue().ListByAssignee(ctx, nil, actor.ID, filters)
		return s.buildListResponse(actor, issues, total, req, err)
	case models.RoleRegistrar:
		if actor.CollegeID == nil {
			return s.emptyListResponse(req), nil
		}
		issues, total, err := s.repo.Issue().ListByCollege(ctx, nil, *actor.CollegeID, filters)
		return s.buildListResponse(actor, issues, total, req, err)
	}

	return nil, NewPermissionError(actor.ID, 0, "issue", "list", "unknown role")
}

func (s *issueService) ListMine(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error) {
	issues, total, err := s.repo.Issue().ListByStudent(ctx, nil, actor.ID, toIssueFilters(req))
	return s.buildListResponse(actor, issues, total, req, err)
}

func (s *issueService) ListAssigned(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error) {
	if !actor.Role.CanBeAssignee() {
		return nil, NewPermissionError(actor.ID, 0, "issue", "list_assigned", "role cannot hold assignments")
	}

	issues, total, err := s.repo.Issue().ListByAssignee(ctx, nil, actor.ID, toIssueFilters(req))
	return s.buildListResponse(actor, issues, total, req, err)
}

// ListHistory is the registrar's college-wide record of issues in every
// state. A status filter narrows it when given.
func (s *issueService) ListHistory(ctx context.Context, req ListIssuesRequest, actor *models.User) (*IssueListResponse, error) {
	if actor.Role != models.RoleRegistrar {
		return nil, NewPermissionError(actor.ID, 0, "issue", "list_history", "registrar only")
	}
	if actor.CollegeID == nil {
		return s.emptyListResponse(req), nil
	}

	issues, total, err := s.repo.Issue().ListByCollege(ctx, nil, *actor.CollegeID, toIssueFilters(req))
	return s.buildListResponse(actor, issues, total, req, err)
}

// ===== WORKFLOW TRANSITIONS =====

func (s *issueService) MarkInProgress(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error) {
	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canMarkInProgress(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "mark_in_progress", "registrar-only, college scope")
	}

	if err := s.transition(ctx, issue, models.StatusOpen, models.StatusInProgress, nil, "mark in progress"); err != nil {
		return nil, err
	}

	s.logger.Info("Issue marked in progress", "issue_id", id, "actor_id", actor.ID)

	s.notifyUser(ctx, issue.StudentID, id, fmt.Sprintf("Your %s issue is now being worked on.", issue.Category.Display()))
	s.publishIssueEvent(ctx, events.EventIssueStatusChanged, issue, actor.ID)

	return s.GetByID(ctx, id, actor)
}

func (s *issueService) Assign(ctx context.Context, id uint, req *AssignIssueRequest, actor *models.User) (*IssueResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAssign(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "assign", "registrar-only, college scope")
	}

	assignee, err := s.repo.User().GetByID(ctx, nil, req.AssigneeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check assignee: %w", err)
	}
	if !assignee.Role.CanBeAssignee() {
		return nil, ValidationErrors{*validator.NewValidationError("assignee_id", "assignee must be a lecturer or registrar", req.AssigneeID)}
	}

	// Assignment and the in_progress transition land in one atomic write,
	// so an issue is never in_progress without a holder via this path.
	if err := s.transition(ctx, issue, models.StatusOpen, models.StatusInProgress, &assignee.ID, "assign"); err != nil {
		return nil, err
	}

	s.logger.Info("Issue assigned", "issue_id", id, "assignee_id", assignee.ID, "actor_id", actor.ID)

	s.notifyUser(ctx, assignee.ID, id, fmt.Sprintf("You have been assigned a %s issue.", issue.Category.Display()))
	s.publishIssueEvent(ctx, events.EventIssueAssigned, issue, actor.ID)

	return s.GetByID(ctx, id, actor)
}

func (s *issueService) Resolve(ctx context.Context, id uint, actor *models.User) (*IssueResponse, error) {
	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canResolve(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "resolve", "assignee only")
	}

	if err := s.transition(ctx, issue, models.StatusInProgress, models.StatusResolved, nil, "resolve"); err != nil {
		return nil, err
	}

	s.logger.Info("Issue resolved", "issue_id", id, "actor_id", actor.ID)

	s.notifyUser(ctx, issue.StudentID, id, fmt.Sprintf("Your %s issue has been resolved.", issue.Category.Display()))
	s.publishIssueEvent(ctx, events.EventIssueResolved, issue, actor.ID)

	return s.GetByID(ctx, id, actor)
}

// ===== UPDATE TRAIL =====

func (s *issueService) AddUpdate(ctx context.Context, id uint, req *IssueCommentRequest, actor *models.User) (*models.IssueUpdate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canComment(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "comment", "outside actor's scope")
	}

	update := &models.IssueUpdate{
		IssueID: id,
		UserID:  actor.ID,
		Comment: req.Comment,
	}

	if err := s.repo.IssueUpdate().Create(ctx, nil, update); err != nil {
		return nil, fmt.Errorf("failed to add issue update: %w", err)
	}

	s.publishIssueEvent(ctx, events.EventIssueCommentAdded, issue, actor.ID)

	return update, nil
}

func (s *issueService) ListUpdates(ctx context.Context, id uint, actor *models.User) ([]*models.IssueUpdate, error) {
	issue, err := s.getIssueWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canViewIssue(actor, issue) {
		return nil, NewPermissionError(actor.ID, id, "issue", "read", "outside actor's scope")
	}

	updates, err := s.repo.IssueUpdate().ListByIssue(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue updates: %w", err)
	}

	return updates, nil
}

// ===== STATISTICS =====

func (s *issueService) Stats(ctx context.Context, actor *models.User) (*repositories.IssueStats, error) {
	if actor.Role != models.RoleRegistrar {
		return nil, NewPermissionError(actor.ID, 0, "issue", "stats", "registrar only")
	}
	if actor.CollegeID == nil {
		return &repositories.IssueStats{}, nil
	}

	stats, err := s.repo.Issue().StatsByCollege(ctx, nil, *actor.CollegeID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}
