package services

import (
	"context"
	"fmt"

	"github.com/AITS-2025/issue-tracking-service/internal/events"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *issueService) getIssueWithDetails(ctx context.Context, id uint) (*models.Issue, error) {
	issue, err := s.repo.Issue().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return issue, nil
}

// transition runs the compare-and-swap and turns a lost race into an
// InvalidStateError carrying the status the issue actually holds now.
func (s *issueService) transition(ctx context.Context, issue *models.Issue, from, to models.IssueStatus, assigneeID *uint, action string) error {
	if issue.Status != from {
		return NewInvalidStateError(issue.ID, string(issue.Status), action)
	}

	ok, err := s.repo.Issue().TransitionStatus(ctx, nil, issue.ID, from, to, assigneeID)
	if err != nil {
		return fmt.Errorf("failed to %s issue: %w", action, err)
	}
	if !ok {
		current := string(from)
		if fresh, err := s.repo.Issue().GetByID(ctx, nil, issue.ID); err == nil {
			current = string(fresh.Status)
		}
		return NewInvalidStateError(issue.ID, current, action)
	}

	issue.Status = to
	if assigneeID != nil {
		issue.AssignedToID = assigneeID
	}

	return nil
}

// notifyUser writes an in-app notification. Failures are logged and
// swallowed: the transition has already committed and must not be undone by
// a notification hiccup.
func (s *issueService) notifyUser(ctx context.Context, userID, issueID uint, message string) {
	notification := &models.Notification{
		UserID:  userID,
		IssueID: issueID,
		Message: message,
	}

	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		s.logger.Error("Failed to create notification", "user_id", userID, "issue_id", issueID, "error", err)
	}
}

// publishIssueEvent publishes best-effort; a broker outage never fails the
// request.
func (s *issueService) publishIssueEvent(ctx context.Context, eventType string, issue *models.Issue, actorID uint) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, events.IssueEventData{
		IssueID:      issue.ID,
		Category:     string(issue.Category),
		Status:       string(issue.Status),
		StudentID:    issue.StudentID,
		CourseID:     issue.CourseID,
		AssignedToID: issue.AssignedToID,
		ActorID:      actorID,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "issue_id", issue.ID, "error", err)
	}
}

func (s *issueService) buildIssueResponse(actor *models.User, issue *models.Issue) *IssueResponse {
	return &IssueResponse{
		Issue:             issue,
		CanMarkInProgress: issue.Status == models.StatusOpen && canMarkInProgress(actor, issue),
		CanAssign:         issue.Status == models.StatusOpen && canAssign(actor, issue),
		CanResolve:        issue.Status == models.StatusInProgress && canResolve(actor, issue),
		CanComment:        canComment(actor, issue),
	}
}

func (s *issueService) buildListResponse(actor *models.User, issues []*models.Issue, total int64, req ListIssuesRequest, err error) (*IssueListResponse, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	responses := make([]*IssueResponse, 0, len(issues))
	for _, issue := range issues {
		responses = append(responses, s.buildIssueResponse(actor, issue))
	}

	page, size := normalizePaging(req.Page, req.Size)

	return &IssueListResponse{
		Issues: responses,
		Total:  total,
		Page:   page,
		Size:   size,
	}, nil
}

func (s *issueService) emptyListResponse(req ListIssuesRequest) *IssueListResponse {
	page, size := normalizePaging(req.Page, req.Size)
	return &IssueListResponse{
		Issues: []*IssueResponse{},
		Page:   page,
		Size:   size,
	}
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func toIssueFilters(req ListIssuesRequest) repositories.IssueFilters {
	page, size := normalizePaging(req.Page, req.Size)

	return repositories.IssueFilters{
		Status:   req.Status,
		Category: req.Category,
		CourseID: req.CourseID,
		Limit:    size,
		Offset:   (page - 1) * size,
	}
}
