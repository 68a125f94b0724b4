// Package router 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerAuthRoutes 注册认证相关路由
func (rt *Router) registerAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", rt.handlers.Auth.Register) // 注册
		authGroup.POST("/login", rt.handlers.Auth.Login)       // 登录
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh)   // 刷新令牌对

		// 注销需要有效的 Access Token
		authGroup.POST("/logout", middleware.JWTAuth(), rt.handlers.Auth.Logout)
	}
}
