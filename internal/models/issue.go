package models

import (
	"time"

	"gorm.io/gorm"
)

type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
)

func (s IssueStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (s IssueStatus) IsTerminal() bool {
	return s == StatusResolved
}

func (s IssueStatus) Display() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	}
	return string(s)
}

type IssueCategory string

const (
	CategoryMissingMarks    IssueCategory = "missing_marks"
	CategoryIncorrectGrades IssueCategory = "incorrect_grades"
	CategoryRemarking       IssueCategory = "remarking"
	CategoryOther           IssueCategory = "other"
)

func (c IssueCategory) IsValid() bool {
	switch c {
	case CategoryMissingMarks, CategoryIncorrectGrades, CategoryRemarking, CategoryOther:
		return true
	}
	return false
}

func (c IssueCategory) Display() string {
	switch c {
	case CategoryMissingMarks:
		return "Missing marks"
	case CategoryIncorrectGrades:
		return "Incorrect grades"
	case CategoryRemarking:
		return "Remarking"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

// CategoryOption is the {value, display} pair served by the categories
// endpoint so clients can render the fixed choice list.
type CategoryOption struct {
	Value   IssueCategory `json:"value"`
	Display string        `json:"display"`
}

// IssueCategories returns the closed category set in a stable order.
func IssueCategories() []CategoryOption {
	return []CategoryOption{
		{CategoryMissingMarks, CategoryMissingMarks.Display()},
		{CategoryIncorrectGrades, CategoryIncorrectGrades.Display()},
		{CategoryRemarking, CategoryRemarking.Display()},
		{CategoryOther, CategoryOther.Display()},
	}
}

const (
	SemesterFirst  = 1
	SemesterSecond = 2
)

func ValidSemester(s int) bool {
	return s == SemesterFirst || s == SemesterSecond
}

type Issue struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Category    IssueCategory `json:"category" gorm:"not null;size:30;index"`
	Description string        `json:"description" gorm:"type:text;not null"`
	YearOfStudy string        `json:"year_of_study" gorm:"size:20"`
	Semester    int           `json:"semester" gorm:"not null"`
	Status      IssueStatus   `json:"status" gorm:"not null;size:20;default:open;index"`

	StudentID    uint  `json:"student_id" gorm:"not null;index"`
	CourseID     uint  `json:"course_id" gorm:"not null;index"`
	AssignedToID *uint `json:"assigned_to_id" gorm:"index"`

	Student    *User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course     *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	AssignedTo *User   `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`

	// Updates cascade-delete with the issue; users and courses are weak
	// references owned elsewhere.
	Updates []IssueUpdate `json:"updates,omitempty" gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Issue) TableName() string {
	return "issues"
}

// IsAssignedTo reports whether the given user holds the exclusive
// assignment on this issue.
func (i *Issue) IsAssignedTo(userID uint) bool {
	return i.AssignedToID != nil && *i.AssignedToID == userID
}

// IssueUpdate is one entry of an issue's append-only comment trail.
// Rows are immutable once created; there is no edit or delete path.
type IssueUpdate struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	IssueID   uint      `json:"issue_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (IssueUpdate) TableName() string {
	return "issue_updates"
}
