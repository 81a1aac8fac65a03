package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

// BusinessValidator handles business rule validation beyond struct tags.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: newValidate()}
}

// Validate validates business rules for any struct.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateIssueCreate validates issue creation business rules.
func (bv *BusinessValidator) ValidateIssueCreate(req *IssueCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Struct tags already cover the enums; the trimmed-description check is
	// the only rule tags cannot express.
	if strings.TrimSpace(req.Description) == "" && req.Description != "" {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: "must not be blank",
			Value:   req.Description,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateUserProvision validates a user row about to be provisioned from
// IdP claims: closed role set plus the role-dependent affiliation invariant.
func (bv *BusinessValidator) ValidateUserProvision(user *models.User) ValidationErrors {
	var errors ValidationErrors

	if !user.Role.IsValid() {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "must be one of: student, lecturer, academic_registrar",
			Value:   user.Role,
			Rule:    "user_role",
		})
		return errors
	}

	if err := user.ValidateAffiliation(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "affiliation",
			Message: err.Error(),
			Rule:    "business_logic",
		})
	}

	return errors
}

// newValidate builds a validator.Validate with the domain rules registered.
func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterValidation("issue_category", func(fl validator.FieldLevel) bool {
		return models.IssueCategory(fl.Field().String()).IsValid()
	})

	validate.RegisterValidation("semester_value", func(fl validator.FieldLevel) bool {
		return models.ValidSemester(int(fl.Field().Int()))
	})

	validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	validate.RegisterValidation("issue_status", func(fl validator.FieldLevel) bool {
		return models.IssueStatus(fl.Field().String()).IsValid()
	})

	return validate
}
