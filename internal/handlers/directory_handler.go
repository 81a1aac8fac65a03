package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/services"
	"github.com/AITS-2025/issue-tracking-service/internal/utils"
)

// DirectoryHandler serves reference data: the fixed option lists backing
// submission forms, the course catalog and the lecturer directory.
type DirectoryHandler struct {
	BaseHandler
	directoryService services.DirectoryService
}

func NewDirectoryHandler(directoryService services.DirectoryService, logger utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler:      NewBaseHandler(logger),
		directoryService: directoryService,
	}
}

// yearOptions matches the option list students pick from on submission.
var yearOptions = []string{"Year One", "Year Two", "Year Three", "Year Four", "Year Five"}

// GetIssueCategories returns the closed category set
// @Summary Issue categories
// @Tags meta
// @Produce json
// @Success 200 {array} models.CategoryOption
// @Router /meta/issue-categories [get]
func (h *DirectoryHandler) GetIssueCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.IssueCategories())
}

// GetYearOptions returns the year-of-study options
// @Summary Year options
// @Tags meta
// @Produce json
// @Success 200 {array} string
// @Router /meta/year-options [get]
func (h *DirectoryHandler) GetYearOptions(c *gin.Context) {
	c.JSON(http.StatusOK, yearOptions)
}

// GetSemesterOptions returns the valid semester values
// @Summary Semester options
// @Tags meta
// @Produce json
// @Success 200 {array} int
// @Router /meta/semester-options [get]
func (h *DirectoryHandler) GetSemesterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, []int{models.SemesterFirst, models.SemesterSecond})
}

// ListCourses lists the course catalog
// @Summary List courses
// @Tags directory
// @Produce json
// @Param department_id query uint false "Filter by department"
// @Param programme_id query uint false "Filter by programme"
// @Success 200 {object} map[string]interface{}
// @Router /directory/courses [get]
func (h *DirectoryHandler) ListCourses(c *gin.Context) {
	var filters repositories.CourseFilters

	if raw := c.Query("department_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid department_id parameter", Details: raw})
			return
		}
		v := uint(id)
		filters.DepartmentID = &v
	}
	if raw := c.Query("programme_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid programme_id parameter", Details: raw})
			return
		}
		v := uint(id)
		filters.ProgrammeID = &v
	}

	courses, err := h.directoryService.ListCourses(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   len(courses),
	})
}

// ListLecturers lists lecturers of a department, for the assignment picker
// @Summary List lecturers
// @Tags directory
// @Produce json
// @Param department_id query uint true "Department ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /directory/lecturers [get]
func (h *DirectoryHandler) ListLecturers(c *gin.Context) {
	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	raw := c.Query("department_id")
	id, parseErr := strconv.ParseUint(raw, 10, 32)
	if parseErr != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "department_id query parameter is required", Details: raw})
		return
	}

	lecturers, err := h.directoryService.ListLecturers(c.Request.Context(), uint(id), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lecturers": lecturers,
		"total":     len(lecturers),
	})
}
