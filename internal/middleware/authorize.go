package middleware

import (
	"github.com/gin-gonic/gin"

	"buzztub/internal/models"
)

// RequireRoles lets the request through only when the session's role is one
// of roles. The role checked is the one recorded at login. deny is called for
// every other request, including ones that carry no session.
func RequireRoles(deny gin.HandlerFunc, roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			deny(c)
			return
		}

		if _, ok := roleSet[session.Role]; !ok {
			deny(c)
			return
		}

		c.Next()
	}
}
