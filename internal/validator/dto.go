package validator

import "github.com/AITS-2025/issue-tracking-service/internal/models"

// IssueCreateRequest represents the request structure for reporting an issue.
// The submitting student is taken from the authenticated actor, never from
// the payload; there is deliberately no student field here.
type IssueCreateRequest struct {
	Category    models.IssueCategory `json:"category" validate:"required,issue_category"`
	Description string               `json:"description" validate:"required,min=1,max=2000"`
	YearOfStudy string               `json:"year_of_study" validate:"omitempty,max=20"`
	Semester    int                  `json:"semester" validate:"required,semester_value"`
	CourseID    uint                 `json:"course_id" validate:"required"`
}

// AssignRequest binds an issue to a lecturer or registrar.
type AssignRequest struct {
	AssigneeID uint `json:"assignee_id" validate:"required"`
}

// IssueCommentRequest appends one entry to an issue's update trail.
type IssueCommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}
