package middleware

import (
	"net/http"
	"strings"

	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// CtxUserUuid 已验证用户 id 在 gin 上下文中的键
const CtxUserUuid = "user_uuid"

// JWTAuth JWT 认证中间件（强制）
// 验证 Access Token 并将用户 id 存入上下文，未携带或无效直接 401
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}
		c.Set(CtxUserUuid, claims.UserUuid)
		c.Next()
	}
}

// OptionalAuth JWT 认证中间件（可选）
// 写接口对匿名开放，携带有效 Token 时按登录用户处理，
// Token 缺失或无效时按匿名继续，不中断请求
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := jwt.ParseToken(parts[1]); err == nil && claims.Subject == jwt.SubjectAccess {
					c.Set(CtxUserUuid, claims.UserUuid)
				}
			}
		}
		c.Next()
	}
}

// parseBearer 解析并校验 Authorization 头中的 Access Token
// 失败时写出 401 响应并中断，返回 ok=false
func parseBearer(c *gin.Context) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请先登录",
		})
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "Token 格式错误，请使用 Bearer Token",
		})
		return nil, false
	}

	claims, err := jwt.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "Token 已过期或无效，请重新登录",
		})
		return nil, false
	}

	if claims.Subject != jwt.SubjectAccess {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请使用 Access Token 访问此接口",
		})
		return nil, false
	}
	return claims, true
}
