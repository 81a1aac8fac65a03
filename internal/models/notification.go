package models

import "time"

// Notification is an in-app message created as a side effect of workflow
// transitions. Email delivery is an external concern; this row only tracks
// the message and its read state.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	IssueID   uint      `json:"issue_id" gorm:"not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
