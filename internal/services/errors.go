package services

import (
	"errors"
	"fmt"

	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

// ValidationErrors is re-exported so handlers can type-switch on service
// errors without importing the validator package.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors mapped to 404 at the HTTP layer.
var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// PermissionError reports an actor attempting an operation outside their
// role or scope. Maps to 403.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// InvalidStateError reports a workflow transition rejected because the
// issue was not in the expected status, including when a concurrent caller
// won the race. Maps to 400.
type InvalidStateError struct {
	IssueID    uint
	Current    string
	Transition string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("issue %d cannot %s from status %q", e.IssueID, e.Transition, e.Current)
}

func NewInvalidStateError(issueID uint, current, transition string) *InvalidStateError {
	return &InvalidStateError{
		IssueID:    issueID,
		Current:    current,
		Transition: transition,
	}
}
