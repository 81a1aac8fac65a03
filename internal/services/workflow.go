package services

import (
	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// Workflow policy. These are pure functions over (actor, issue) so the
// rules stay testable without a database. The status checks here are only
// advisory for early rejection; the authoritative check is the conditional
// UPDATE in the repository, which is what serializes racing actors.

// canViewIssue applies the role scoping rules: students see their own
// submissions, lecturers what is assigned to them, registrars everything in
// their college.
func canViewIssue(actor *models.User, issue *models.Issue) bool {
	switch actor.Role {
	case models.RoleStudent:
		return issue.StudentID == actor.ID
	case models.RoleLecturer:
		return issue.IsAssignedTo(actor.ID)
	case models.RoleRegistrar:
		return issueInCollege(actor, issue)
	}
	return false
}

// issueInCollege reports whether the issue's submitting student belongs to
// the registrar's college. Requires issue.Student to be preloaded; a
// registrar without a college sees nothing.
func issueInCollege(registrar *models.User, issue *models.Issue) bool {
	if registrar.CollegeID == nil || issue.Student == nil || issue.Student.CollegeID == nil {
		return false
	}
	return *registrar.CollegeID == *issue.Student.CollegeID
}

// canMarkInProgress gates the explicit open -> in_progress acknowledgement.
// Registrar-only, scoped to their college.
func canMarkInProgress(actor *models.User, issue *models.Issue) bool {
	return actor.Role == models.RoleRegistrar && issueInCollege(actor, issue)
}

// canAssign gates assignment. Only a registrar routes issues, and only
// within their college.
func canAssign(actor *models.User, issue *models.Issue) bool {
	return actor.Role == models.RoleRegistrar && issueInCollege(actor, issue)
}

// canResolve gates in_progress -> resolved. Assignment is exclusive:
// only the assigned user closes the issue, registrar or not.
func canResolve(actor *models.User, issue *models.Issue) bool {
	switch actor.Role {
	case models.RoleLecturer, models.RoleRegistrar:
		return issue.IsAssignedTo(actor.ID)
	}
	return false
}

// canComment allows appending to the update trail for anyone who can see
// the issue, as long as it is still open for discussion.
func canComment(actor *models.User, issue *models.Issue) bool {
	return canViewIssue(actor, issue)
}
