package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/openlms/facetoface-api/internal/models"
	"github.com/openlms/facetoface-api/internal/service"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
	"github.com/openlms/facetoface-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaffVisibility admits admins and trainers outright, and managers
// only when they oversee at least one active user.
func RequireStaffVisibility(capabilities *service.CapabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		switch claims.Role {
		case models.RoleAdmin, models.RoleTrainer:
			c.Next()
			return
		case models.RoleManager:
			visible, err := capabilities.ManagerVisibility(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if visible {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
