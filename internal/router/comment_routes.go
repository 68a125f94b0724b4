// Package router 本文件定义评论相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerCommentRoutes 注册评论相关路由
func (rt *Router) registerCommentRoutes(r *gin.Engine) {
	commentGroup := r.Group("/comments", middleware.OptionalAuth())
	{
		commentGroup.POST("", rt.handlers.Comment.Create) // 创建评论
		commentGroup.GET("", rt.handlers.Comment.List)    // 评论列表
	}
}
