package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fms-portal/suggestion-api/internal/models"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/response"
)

// RequireAccessLevel gates a route to the listed access tiers. Tier
// membership comes from the signed claims, never from request input.
func RequireAccessLevel(levels ...models.AccessLevel) gin.HandlerFunc {
	allowed := make(map[models.AccessLevel]struct{}, len(levels))
	for _, level := range levels {
		allowed[level] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.AccessLevel]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireResponder gates a route to tiers permitted to submit
// responses. Superadmin stays read-only.
func RequireResponder() gin.HandlerFunc {
	return RequireAccessLevel(models.AccessDepartment, models.AccessAll)
}
