package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealdesk/internal/authz"
)

func principalFrom(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get("principal")
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}

func RequireRoles(allowed ...authz.Role) gin.HandlerFunc {
	allowedSet := map[authz.Role]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no principal in context"})
			return
		}
		for r := range allowedSet {
			if p.Roles.Has(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// ReadOnlyGuard запрещает небезопасные методы для чисто аудиторских токенов.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)
		if p.IsReadOnly() && c.Request.URL.Path != "/logout" {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				// ok
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only role"})
				return
			}
		}
		c.Next()
	}
}
