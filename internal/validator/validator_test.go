package validator

import (
	"strings"
	"testing"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

func validIssueCreate() *IssueCreateRequest {
	return &IssueCreateRequest{
		Category:    models.CategoryMissingMarks,
		Description: "Marks for test 2 are missing from the portal",
		YearOfStudy: "Year Two",
		Semester:    1,
		CourseID:    42,
	}
}

func TestValidateIssueCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid request passes", func(t *testing.T) {
		if errs := bv.ValidateIssueCreate(validIssueCreate()); len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	tests := []struct {
		name   string
		mutate func(*IssueCreateRequest)
		field  string
	}{
		{"unknown category", func(r *IssueCreateRequest) { r.Category = "harassment" }, "Category"},
		{"empty description", func(r *IssueCreateRequest) { r.Description = "" }, "Description"},
		{"oversized description", func(r *IssueCreateRequest) { r.Description = strings.Repeat("a", 2001) }, "Description"},
		{"semester zero", func(r *IssueCreateRequest) { r.Semester = 0 }, "Semester"},
		{"semester three", func(r *IssueCreateRequest) { r.Semester = 3 }, "Semester"},
		{"missing course", func(r *IssueCreateRequest) { r.CourseID = 0 }, "CourseID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIssueCreate()
			tt.mutate(req)

			errs := bv.ValidateIssueCreate(req)
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateUserProvision(t *testing.T) {
	bv := NewBusinessValidator()
	one := uint(1)

	tests := []struct {
		name    string
		user    *models.User
		wantErr bool
	}{
		{
			"student with college and programme",
			&models.User{Role: models.RoleStudent, CollegeID: &one, ProgrammeID: &one},
			false,
		},
		{
			"student missing programme",
			&models.User{Role: models.RoleStudent, CollegeID: &one},
			true,
		},
		{
			"lecturer with department",
			&models.User{Role: models.RoleLecturer, DepartmentID: &one},
			false,
		},
		{
			"lecturer missing department",
			&models.User{Role: models.RoleLecturer},
			true,
		},
		{
			"registrar with college",
			&models.User{Role: models.RoleRegistrar, CollegeID: &one},
			false,
		},
		{
			"registrar missing college",
			&models.User{Role: models.RoleRegistrar},
			true,
		},
		{
			"unknown role",
			&models.User{Role: "admin", CollegeID: &one},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateUserProvision(tt.user)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateUserProvision() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidatorStructTags(t *testing.T) {
	v := New()

	if err := v.Validate(&AssignRequest{AssigneeID: 5}); err != nil {
		t.Errorf("valid assign request rejected: %v", err)
	}
	if err := v.Validate(&AssignRequest{}); err == nil {
		t.Error("assign request without assignee should fail")
	}

	if err := v.Validate(&IssueCommentRequest{Comment: "looking into it"}); err != nil {
		t.Errorf("valid comment rejected: %v", err)
	}
	if err := v.Validate(&IssueCommentRequest{}); err == nil {
		t.Error("empty comment should fail")
	}
}
