package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/pkg/errorx"
)

// AdminAuth 管理员校验中间件
// 必须挂在 JWTAuth 之后使用：从上下文取已验证用户，校验管理员标志
func AdminAuth(userRepo mysql.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUuid := c.GetString(CtxUserUuid)
		if userUuid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请先登录",
			})
			return
		}

		user, err := userRepo.FindByUuid(userUuid)
		if err != nil || user.IsAdmin != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "无权访问审核接口",
			})
			return
		}
		c.Next()
	}
}
