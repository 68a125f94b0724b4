// Package router 本文件定义点赞与配额查询相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerLikeRoutes 注册点赞相关路由
func (rt *Router) registerLikeRoutes(r *gin.Engine) {
	likeGroup := r.Group("/likes", middleware.OptionalAuth())
	{
		likeGroup.POST("", rt.handlers.Like.Toggle)             // 点赞（幂等）
		likeGroup.GET("/stats", rt.handlers.Like.Stats)         // 点赞统计
		likeGroup.GET("/recent", rt.handlers.Like.Recent)       // 最近点赞
		likeGroup.POST("/liked_set", rt.handlers.Like.LikedSet) // 已点赞子集
	}

	// 剩余配额查询（只读）
	r.GET("/quota", middleware.OptionalAuth(), rt.handlers.Like.Quota)
}
