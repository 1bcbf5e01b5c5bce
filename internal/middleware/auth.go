package middleware

import (
	"strings"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// extractToken 优先取 Authorization 头；导出下载等浏览器直开的链接
// 无法带请求头，允许 query 参数兜底。
func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware 角色门禁。管理员隐含拥有全部角色。
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user.Role != model.Admin && !containsRole(roles, user.Role) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func containsRole(roles []model.UserRole, role model.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

// ActivityMiddleware 记录标注者最近活跃时间，供管理端的标注者列表展示。
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			// 异步更新，不阻塞请求
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}
