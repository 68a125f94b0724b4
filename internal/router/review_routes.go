// Package router 本文件定义点评相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerReviewRoutes 注册点评相关路由
// 写操作对匿名开放（设备指纹），登录用户凭可选的 Access Token
func (rt *Router) registerReviewRoutes(r *gin.Engine) {
	reviewGroup := r.Group("/reviews", middleware.OptionalAuth())
	{
		reviewGroup.POST("", rt.handlers.Review.Create) // 创建点评
		reviewGroup.GET("", rt.handlers.Review.List)    // 点评列表
		reviewGroup.GET("/:id", rt.handlers.Review.Get) // 点评详情
	}
}
