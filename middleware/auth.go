package middleware

import (
	"net/http"
	"strings"

	"github.com/learnpet/learnpet/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuth 中间件：提取 Bearer token -> 本地校验 -> 注入 user_id / role
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing Authorization header")
			return
		}
		token := header
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
		if token == "" {
			unauthorized(c, "empty bearer token")
			return
		}
		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// OptionalAuth 带了有效 token 就注入身份，没带或无效都放行。
// 用于公开读对象这类"有身份更好、没有也能访问公开资源"的路由。
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			token := header
			if after, ok := strings.CutPrefix(header, "Bearer "); ok {
				token = after
			}
			if claims, err := utils.ParseToken(secret, token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole 必须在 JWTAuth 之后使用
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "该操作仅限 " + role + " 角色"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}
