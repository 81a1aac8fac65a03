package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/services"
	"github.com/AITS-2025/issue-tracking-service/internal/utils"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

type IssueHandler struct {
	BaseHandler
	issueService services.IssueService
	validator    *validator.Validator
}

func NewIssueHandler(
	issueService services.IssueService,
	validator *validator.Validator,
	logger utils.Logger,
) *IssueHandler {
	return &IssueHandler{
		BaseHandler:  NewBaseHandler(logger),
		issueService: issueService,
		validator:    validator,
	}
}

// CreateIssue reports a new issue
// @Summary Report issue
// @Description Submits a new academic issue for the authenticated student
// @Tags issues
// @Accept json
// @Produce json
// @Param issue body services.CreateIssueRequest true "Issue data"
// @Success 201 {object} services.IssueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /issues [post]
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req services.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Creating issue", "actor_id", actor.ID, "category", req.Category)

	issue, err := h.issueService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssue retrieves an issue by ID
// @Summary Get issue
// @Description Retrieves an issue with its update trail, if the actor may see it
// @Tags issues
// @Produce json
// @Param id path uint true "Issue ID"
// @Success 200 {object} services.IssueResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id} [get]
func (h *IssueHandler) GetIssue(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	issue, err := h.issueService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ListIssues lists issues in the actor's scope
// @Summary List issues
// @Description Lists issues scoped by role: own submissions, assignments, or college
// @Tags issues
// @Produce json
// @Param status query string false "Filter by status (open, in_progress, resolved)"
// @Param category query string false "Filter by category"
// @Param course_id query uint false "Filter by course"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.IssueListResponse
// @Router /issues [get]
func (h *IssueHandler) ListIssues(c *gin.Context) {
	h.list(c, func(actor *models.User, req services.ListIssuesRequest) (*services.IssueListResponse, error) {
		return h.issueService.List(c.Request.Context(), req, actor)
	})
}

// ListMyIssues lists the actor's own submissions
// @Summary List my issues
// @Tags issues
// @Produce json
// @Success 200 {object} services.IssueListResponse
// @Router /issues/mine [get]
func (h *IssueHandler) ListMyIssues(c *gin.Context) {
	h.list(c, func(actor *models.User, req services.ListIssuesRequest) (*services.IssueListResponse, error) {
		return h.issueService.ListMine(c.Request.Context(), req, actor)
	})
}

// ListAssignedIssues lists issues assigned to the actor
// @Summary List assigned issues
// @Tags issues
// @Produce json
// @Success 200 {object} services.IssueListResponse
// @Router /issues/assigned [get]
func (h *IssueHandler) ListAssignedIssues(c *gin.Context) {
	h.list(c, func(actor *models.User, req services.ListIssuesRequest) (*services.IssueListResponse, error) {
		return h.issueService.ListAssigned(c.Request.Context(), req, actor)
	})
}

// ListIssueHistory lists every issue across the registrar's college
// @Summary List issue history
// @Tags issues
// @Produce json
// @Success 200 {object} services.IssueListResponse
// @Router /issues/history [get]
func (h *IssueHandler) ListIssueHistory(c *gin.Context) {
	h.list(c, func(actor *models.User, req services.ListIssuesRequest) (*services.IssueListResponse, error) {
		return h.issueService.ListHistory(c.Request.Context(), req, actor)
	})
}

func (h *IssueHandler) list(c *gin.Context, fn func(*models.User, services.ListIssuesRequest) (*services.IssueListResponse, error)) {
	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req, ok := h.parseListFilters(c)
	if !ok {
		return
	}

	issues, err := fn(actor, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// MarkInProgress acknowledges an open issue
// @Summary Mark issue in progress
// @Description Moves an open issue to in_progress without assigning it
// @Tags issues
// @Produce json
// @Param id path uint true "Issue ID"
// @Success 200 {object} services.IssueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id}/mark-in-progress [post]
func (h *IssueHandler) MarkInProgress(c *gin.Context) {
	h.transition(c, "Marking issue in progress", func(id uint, actor *models.User) (*services.IssueResponse, error) {
		return h.issueService.MarkInProgress(c.Request.Context(), id, actor)
	})
}

// AssignIssue assigns an open issue to a lecturer or registrar
// @Summary Assign issue
// @Description Assigns an open issue and moves it to in_progress in one step
// @Tags issues
// @Accept json
// @Produce json
// @Param id path uint true "Issue ID"
// @Param assignment body services.AssignIssueRequest true "Assignment data"
// @Success 200 {object} services.IssueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id}/assign [post]
func (h *IssueHandler) AssignIssue(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Assigning issue", "issue_id", id, "assignee_id", req.AssigneeID)

	issue, err := h.issueService.Assign(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ResolveIssue resolves an in-progress issue
// @Summary Resolve issue
// @Tags issues
// @Produce json
// @Param id path uint true "Issue ID"
// @Success 200 {object} services.IssueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id}/resolve [post]
func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	h.transition(c, "Resolving issue", func(id uint, actor *models.User) (*services.IssueResponse, error) {
		return h.issueService.Resolve(c.Request.Context(), id, actor)
	})
}

func (h *IssueHandler) transition(c *gin.Context, logMsg string, fn func(uint, *models.User) (*services.IssueResponse, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, logMsg, "issue_id", id, "actor_id", actor.ID)

	issue, err := fn(id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// AddIssueUpdate appends a comment to the issue's update trail
// @Summary Add issue update
// @Tags issues
// @Accept json
// @Produce json
// @Param id path uint true "Issue ID"
// @Param comment body services.IssueCommentRequest true "Comment"
// @Success 201 {object} models.IssueUpdate
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id}/updates [post]
func (h *IssueHandler) AddIssueUpdate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.IssueCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	update, err := h.issueService.AddUpdate(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, update)
}

// ListIssueUpdates lists the issue's update trail oldest-first
// @Summary List issue updates
// @Tags issues
// @Produce json
// @Param id path uint true "Issue ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /issues/{id}/updates [get]
func (h *IssueHandler) ListIssueUpdates(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	updates, err := h.issueService.ListUpdates(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updates": updates,
		"total":   len(updates),
	})
}

// GetIssueStats returns the status breakdown for the registrar's college
// @Summary Issue statistics
// @Tags issues
// @Produce json
// @Success 200 {object} repositories.IssueStats
// @Failure 403 {object} ErrorResponse
// @Router /issues/stats [get]
func (h *IssueHandler) GetIssueStats(c *gin.Context) {
	actor, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.issueService.Stats(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseListFilters reads the optional list query parameters; it writes the
// 400 response itself when a value is outside the closed enums.
func (h *IssueHandler) parseListFilters(c *gin.Context) (services.ListIssuesRequest, bool) {
	var req services.ListIssuesRequest

	if raw := c.Query("status"); raw != "" {
		status := models.IssueStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status filter",
				Details: raw,
			})
			return req, false
		}
		req.Status = &status
	}

	if raw := c.Query("category"); raw != "" {
		category := models.IssueCategory(raw)
		if !category.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid category filter",
				Details: raw,
			})
			return req, false
		}
		req.Category = &category
	}

	if raw := c.Query("course_id"); raw != "" {
		courseID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || courseID == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid course_id filter",
				Details: raw,
			})
			return req, false
		}
		id := uint(courseID)
		req.CourseID = &id
	}

	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	return req, true
}
