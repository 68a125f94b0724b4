// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db        *gorm.DB                // GORM 数据库实例
	User      UserRepository          // 注册用户 Repository
	Anonymous AnonymousUserRepository // 匿名用户 Repository
	Target    TargetRepository        // 点评目标 Repository
	Review    ReviewRepository        // 点评 Repository
	Comment   CommentRepository       // 评论 Repository
	Like      LikeRepository          // 点赞 Repository
	Report    ReportRepository        // 举报 Repository
	RateLimit RateLimitRepository     // 限流计数器 Repository
}

// NewRepositories 创建所有 Repository 实例
// 接收 GORM 数据库实例，初始化并返回 Repositories 聚合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		User:      NewUserRepository(db),
		Anonymous: NewAnonymousUserRepository(db),
		Target:    NewTargetRepository(db),
		Review:    NewReviewRepository(db),
		Comment:   NewCommentRepository(db),
		Like:      NewLikeRepository(db),
		Report:    NewReportRepository(db),
		RateLimit: NewRateLimitRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
