// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/handler"
)

// Router 路由管理器
// 持有 Handler 聚合与管理员校验所需的用户 Repository
type Router struct {
	handlers *handler.Handlers
	userRepo mysql.UserRepository
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, userRepo mysql.UserRepository) *Router {
	return &Router{
		handlers: handlers,
		userRepo: userRepo,
	}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用，按模块分别注册各个路由组
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.registerAuthRoutes(r)    // 认证路由
	rt.registerTargetRoutes(r)  // 点评目标路由
	rt.registerReviewRoutes(r)  // 点评路由
	rt.registerCommentRoutes(r) // 评论路由
	rt.registerLikeRoutes(r)    // 点赞路由
	rt.registerReportRoutes(r)  // 举报路由
	rt.registerAdminRoutes(r)   // 管理端路由（审核）
}
