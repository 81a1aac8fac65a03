package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventSource identifies this service in the event envelope.
	EventSource = "issue-tracking-service"

	// EventVersion is the envelope schema version.
	EventVersion = "1.0"
)

// Event types published on workflow transitions.
const (
	EventIssueCreated       = "issue.created"
	EventIssueAssigned      = "issue.assigned"
	EventIssueStatusChanged = "issue.status_changed"
	EventIssueResolved      = "issue.resolved"
	EventIssueCommentAdded  = "issue.comment_added"
)

// Event is the envelope published to the message broker. Data carries the
// type-specific payload and is JSON-marshalled on the wire.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh ID and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// IssueEventData is the payload shared by all issue lifecycle events.
type IssueEventData struct {
	IssueID      uint   `json:"issue_id"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	StudentID    uint   `json:"student_id"`
	CourseID     uint   `json:"course_id"`
	AssignedToID *uint  `json:"assigned_to_id,omitempty"`
	ActorID      uint   `json:"actor_id"`
}
