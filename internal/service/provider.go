// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dao/redis"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/service/auth"
	"tool_review_server/internal/service/comment"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/like"
	"tool_review_server/internal/service/moderation"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/internal/service/review"
	"tool_review_server/internal/service/target"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Identity   *identity.Service   // 行为人解析
	RateLimit  *ratelimit.Service  // 限流
	Moderation *moderation.Service // 举报聚合与审核
	Like       *like.Service       // 点赞
	Review     *review.Service     // 点评
	Comment    *comment.Service    // 评论
	Target     *target.Service     // 点评目标
	Auth       *auth.Service       // 认证
	Publisher  eventbus.Publisher  // 滥用事件总线（用于优雅关停）
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository 聚合、缓存服务与事件发布器
//  2. 先构建流水线底层服务（行为人解析、限流）
//  3. 再构建依赖它们的业务服务
//
// repos: Repository 层聚合实例
// cache: Redis 缓存服务
// publisher: 滥用事件发布器
func NewServices(repos *mysql.Repositories, cache redis.AsyncCacheService, publisher eventbus.Publisher) *Services {
	identitySvc := identity.NewService(repos.User, repos.Anonymous)
	limiterSvc := ratelimit.NewService(repos.RateLimit)

	moderationSvc := moderation.NewService(repos.Report, repos.Review, repos.Comment, limiterSvc, publisher)
	likeSvc := like.NewService(repos.Like, repos.Review, repos.Comment, repos.User, repos.Anonymous, limiterSvc, publisher, cache)
	reviewSvc := review.NewService(repos.Review, repos.Target, repos.User, repos.Anonymous, repos.Like, limiterSvc, publisher, cache)
	commentSvc := comment.NewService(repos.Comment, repos.Review, repos.User, repos.Anonymous, repos.Like, limiterSvc, publisher)
	targetSvc := target.NewService(repos.Target, repos.Review, cache)
	authSvc := auth.NewService(repos.User, cache)

	return &Services{
		Identity:   identitySvc,
		RateLimit:  limiterSvc,
		Moderation: moderationSvc,
		Like:       likeSvc,
		Review:     reviewSvc,
		Comment:    commentSvc,
		Target:     targetSvc,
		Auth:       authSvc,
		Publisher:  publisher,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Review.Create() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository / Redis / 事件总线初始化之后
func InitServices(repos *mysql.Repositories, cache redis.AsyncCacheService, publisher eventbus.Publisher) {
	Svc = NewServices(repos, cache, publisher)
}
