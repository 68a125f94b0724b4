// Package router 本文件定义点评目标相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// registerTargetRoutes 注册目标相关路由（公开只读）
func (rt *Router) registerTargetRoutes(r *gin.Engine) {
	targetGroup := r.Group("/targets")
	{
		targetGroup.GET("", rt.handlers.Target.List)                   // 目标列表（含点评聚合）
		targetGroup.GET("/:id", rt.handlers.Target.Get)                // 目标详情
		targetGroup.GET("/:id/review_stats", rt.handlers.Review.Stats) // 目标点评统计
	}

	// 按类型与短标识查询（前端详情页地址形如 /tools/editor/cursor）
	r.GET("/tools/:type/:slug", rt.handlers.Target.GetBySlug)
}
