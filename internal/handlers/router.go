package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AITS-2025/issue-tracking-service/internal/config"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/services"
	"github.com/AITS-2025/issue-tracking-service/internal/utils"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

type HandlerManager struct {
	issueHandler        *IssueHandler
	notificationHandler *NotificationHandler
	directoryHandler    *DirectoryHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo, validator, logger)

	return &HandlerManager{
		issueHandler:        NewIssueHandler(serviceManager.Issue(), validator, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		directoryHandler:    NewDirectoryHandler(serviceManager.Directory(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Issue routes
		issues := v1.Group("/issues")
		{
			// Submission - students only
			issues.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.issueHandler.CreateIssue)

			// Role-scoped listings
			issues.GET("", hm.issueHandler.ListIssues)
			issues.GET("/mine", hm.issueHandler.ListMyIssues)
			issues.GET("/assigned", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleRegistrar), hm.issueHandler.ListAssignedIssues)
			issues.GET("/history", hm.authMiddleware.RequireRoleMiddleware(models.RoleRegistrar), hm.issueHandler.ListIssueHistory)
			issues.GET("/stats", hm.authMiddleware.RequireRoleMiddleware(models.RoleRegistrar), hm.issueHandler.GetIssueStats)

			issues.GET("/:id", hm.issueHandler.GetIssue)

			// Workflow transitions
			issues.POST("/:id/mark-in-progress", hm.authMiddleware.RequireRoleMiddleware(models.RoleRegistrar), hm.issueHandler.MarkInProgress)
			issues.POST("/:id/assign", hm.authMiddleware.RequireRoleMiddleware(models.RoleRegistrar), hm.issueHandler.AssignIssue)
			issues.POST("/:id/resolve", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleRegistrar), hm.issueHandler.ResolveIssue)

			// Update trail
			issues.GET("/:id/updates", hm.issueHandler.ListIssueUpdates)
			issues.POST("/:id/updates", hm.issueHandler.AddIssueUpdate)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.GET("/unread-count", hm.notificationHandler.GetUnreadCount)
			notifications.POST("/:id/read", hm.notificationHandler.MarkNotificationRead)
		}

		// Static option lists
		meta := v1.Group("/meta")
		{
			meta.GET("/issue-categories", hm.directoryHandler.GetIssueCategories)
			meta.GET("/year-options", hm.directoryHandler.GetYearOptions)
			meta.GET("/semester-options", hm.directoryHandler.GetSemesterOptions)
		}

		// Reference data
		directory := v1.Group("/directory")
		{
			directory.GET("/courses", hm.directoryHandler.ListCourses)
			directory.GET("/lecturers", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleRegistrar), hm.directoryHandler.ListLecturers)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "issue-tracking-service",
		})
	})
}
