// Package router 本文件定义举报相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerReportRoutes 注册举报相关路由
func (rt *Router) registerReportRoutes(r *gin.Engine) {
	reportGroup := r.Group("/reports", middleware.OptionalAuth())
	{
		reportGroup.POST("", rt.handlers.Report.Create) // 创建举报
	}
}
