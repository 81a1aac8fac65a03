package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleLecturer  UserRole = "lecturer"
	RoleRegistrar UserRole = "academic_registrar"
)

// IsValid reports whether the role is one of the closed set. Authorization
// code switches exhaustively over the three roles and treats anything else
// as deny, so an unknown role can never pass a permission check.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleRegistrar:
		return true
	}
	return false
}

// CanBeAssignee reports whether a user with this role may be bound to an
// issue via assigned_to.
func (r UserRole) CanBeAssignee() bool {
	switch r {
	case RoleLecturer, RoleRegistrar:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// CanTriage reports whether this role may move open issues into triage
// (mark-in-progress and assignment).
func (r UserRole) CanTriage() bool {
	return r == RoleRegistrar
}

// CanSubmitIssue reports whether this role may report new issues.
func (r UserRole) CanSubmitIssue() bool {
	return r == RoleStudent
}

func (r UserRole) Display() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleLecturer:
		return "Lecturer"
	case RoleRegistrar:
		return "Academic Registrar"
	}
	return string(r)
}

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	CasdoorID string   `json:"-" gorm:"uniqueIndex;size:255"` // subject claim of the external IdP token
	Username  string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName string   `json:"first_name" gorm:"size:100"`
	LastName  string   `json:"last_name" gorm:"size:100"`
	Role      UserRole `json:"role" gorm:"not null;size:30;index"`

	// Affiliation. Which fields are required depends on the role, enforced
	// once at provisioning time via ValidateAffiliation.
	CollegeID    *uint `json:"college_id" gorm:"index"`
	DepartmentID *uint `json:"department_id" gorm:"index"`
	ProgrammeID  *uint `json:"programme_id"`

	College    *College    `json:"college,omitempty" gorm:"foreignKey:CollegeID"`
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Programme  *Programme  `json:"programme,omitempty" gorm:"foreignKey:ProgrammeID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// ValidateAffiliation enforces the role-dependent affiliation invariant:
// students carry a college and a programme, lecturers a department,
// registrars a college. Checked at user creation only; existing rows are
// trusted afterwards.
func (u *User) ValidateAffiliation() error {
	switch u.Role {
	case RoleStudent:
		if u.CollegeID == nil {
			return fmt.Errorf("college is required for students")
		}
		if u.ProgrammeID == nil {
			return fmt.Errorf("programme is required for students")
		}
	case RoleLecturer:
		if u.DepartmentID == nil {
			return fmt.Errorf("department is required for lecturers")
		}
	case RoleRegistrar:
		if u.CollegeID == nil {
			return fmt.Errorf("college is required for registrars")
		}
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
