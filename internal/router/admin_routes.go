// Package router 本文件定义管理端（审核员）相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
)

// registerAdminRoutes 注册管理端路由
// 全部需要登录且账号具备管理员标志
func (rt *Router) registerAdminRoutes(r *gin.Engine) {
	adminGroup := r.Group("/admin", middleware.JWTAuth(), middleware.AdminAuth(rt.userRepo))
	{
		// ===== 审核 =====
		adminGroup.GET("/reports", rt.handlers.Report.List)                      // 举报单列表
		adminGroup.POST("/reports/resolve", rt.handlers.Report.Resolve)          // 处理举报单
		adminGroup.POST("/content/status", rt.handlers.Report.UpdateContentStatus) // 变更内容状态

		// ===== 目标管理 =====
		adminGroup.POST("/targets", rt.handlers.Target.Create) // 创建点评目标
	}
}
