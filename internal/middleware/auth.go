package middleware

import (
	"net/http"
	"strings"

	"Chat_Community/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 从 Bearer 凭证解析调用者 ID 并注入上下文
func AuthMiddleware(resolver pkg.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "msg": "invalid authorization format"})
			return
		}

		userID, ok := resolver.ResolveCaller(strings.TrimSpace(parts[1]))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "msg": "invalid or expired credential"})
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}
