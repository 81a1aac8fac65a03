package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/AITS-2025/issue-tracking-service/internal/config"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/utils"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

// CasdoorAuthMiddleware provides authentication using Casdoor SDK. Tokens
// are issued and verified by Casdoor; this middleware resolves the local
// user row behind the token's subject, provisioning it on first sight.
type CasdoorAuthMiddleware struct {
	client    *casdoorsdk.Client
	userRepo  repositories.UserRepository
	validator *validator.Validator
	logger    utils.Logger
	config    config.CasdoorConfig
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository, v *validator.Validator, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthMiddleware{
		client:    client,
		userRepo:  userRepo,
		validator: v,
		logger:    logger,
		config:    cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Failed to resolve user",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has one of the required roles.
// There is no super-role: a registrar is scoped to their college like
// everyone else.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found in context",
			})
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("Insufficient permissions, required role: %v", requiredRoles),
		})
		c.Abort()
	}
}

// resolveUser fetches the local row behind the token subject, creating it
// from claims when this identity has never hit the service before.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	casdoorID := claims.User.Id
	if casdoorID == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	user, err := cam.userRepo.GetByCasdoorID(ctx, nil, casdoorID)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return cam.provisionUser(ctx, claims)
}

// provisionUser creates the local user row from token claims. Affiliation
// is fixed at creation time and validated before the row is written.
func (cam *CasdoorAuthMiddleware) provisionUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	user := &models.User{
		CasdoorID: claims.User.Id,
		Username:  claims.User.Name,
		Email:     claims.User.Email,
		FirstName: claims.User.FirstName,
		LastName:  claims.User.LastName,
		Role:      mapCasdoorRole(claims.User.Tag),

		CollegeID:    propertyID(claims.User.Properties, "college_id"),
		DepartmentID: propertyID(claims.User.Properties, "department_id"),
		ProgrammeID:  propertyID(claims.User.Properties, "programme_id"),
	}

	if errs := cam.validator.GetBusinessValidator().ValidateUserProvision(user); len(errs) > 0 {
		return nil, fmt.Errorf("cannot provision user from claims: %s", errs.Error())
	}

	if err := cam.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	cam.logger.Info("Provisioned user from IdP claims",
		"user_id", user.ID, "role", user.Role, "username", user.Username)

	return user, nil
}

// mapCasdoorRole maps the Casdoor user tag to an internal role. Unknown
// tags provision as students, the least privileged role.
func mapCasdoorRole(tag string) models.UserRole {
	switch strings.ToLower(tag) {
	case "lecturer", "teacher", "instructor":
		return models.RoleLecturer
	case "registrar", "academic_registrar":
		return models.RoleRegistrar
	default:
		return models.RoleStudent
	}
}

func propertyID(properties map[string]string, key string) *uint {
	raw, ok := properties[key]
	if !ok || raw == "" {
		return nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil
	}

	v := uint(id)
	return &v
}

// GetUserFromContext extracts the authenticated user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
