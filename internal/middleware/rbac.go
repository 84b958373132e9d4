package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

// SelfMarker allows a route when the :id path parameter matches the
// authenticated user, regardless of role.
const SelfMarker = "SELF"

// RBAC enforces role-based access control for routes. Entries are role
// names, plus the optional SelfMarker.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	roles := make(map[models.UserRole]struct{}, len(allowed))
	for _, entry := range allowed {
		if entry == SelfMarker {
			allowSelf = true
			continue
		}
		roles[models.UserRole(entry)] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			abortWith(c, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			abortWith(c, appErrors.ErrUnauthorized)
			return
		}

		if _, ok := roles[claims.Role]; ok {
			c.Next()
			return
		}
		if allowSelf && isSelf(c, claims) {
			c.Next()
			return
		}

		abortWith(c, appErrors.ErrForbidden)
	}
}

func isSelf(c *gin.Context, claims *models.JWTClaims) bool {
	target := c.Param("id")
	return target != "" && target == strconv.FormatInt(claims.UserID, 10)
}

// RequireRoles is a helper that accepts typed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
