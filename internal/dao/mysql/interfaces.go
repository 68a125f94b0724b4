// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package mysql

import (
	"tool_review_server/internal/model"
)

// ==================== Repository 接口定义 ====================

// UserRepository 注册用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
}

// AnonymousUserRepository 匿名用户数据访问接口
type AnonymousUserRepository interface {
	// FindByUuid 根据 UUID 查找匿名用户
	FindByUuid(uuid string) (*model.AnonymousUser, error)
	// FindByUuids 批量根据 UUID 查找匿名用户
	FindByUuids(uuids []string) ([]model.AnonymousUser, error)
	// FindByFingerprint 根据设备指纹查找匿名用户
	FindByFingerprint(fingerprint string) (*model.AnonymousUser, error)
	// TouchLastSeen 更新最近活跃时间
	TouchLastSeen(uuid string) error
	// CreateWithNextSequence 在事务内分配下一个匿名序号并创建记录
	// 序号分配是先读后写，事务内对当前最大序号加锁，避免并发首见分配出重复序号
	CreateWithNextSequence(anon *model.AnonymousUser, sequenceStart int) error
}

// TargetRepository 点评目标数据访问接口
type TargetRepository interface {
	// FindByUuid 根据 UUID 查找目标
	FindByUuid(uuid string) (*model.Target, error)
	// FindBySlug 根据类型和短标识查找目标
	FindBySlug(toolType model.ToolType, slug string) (*model.Target, error)
	// FindAll 查找所有目标，toolType 为空时不过滤
	FindAll(toolType model.ToolType) ([]model.Target, error)
	// Create 创建目标
	Create(target *model.Target) error
}

// ReviewFilter 点评列表查询条件
type ReviewFilter struct {
	TargetUuid string // 按目标过滤，空串不过滤
	Category   string // 按分类过滤，空串不过滤
	Language   string // 按语言过滤，空串不过滤
	Sort       string // "latest" 或 "hot"（按点赞数）
	Page       int
	PageSize   int
}

// TargetReviewAgg 目标维度的点评聚合（已发布口径）
type TargetReviewAgg struct {
	TargetUuid string
	Total      int64
	AvgRating  float64
}

// ReviewRepository 点评数据访问接口
type ReviewRepository interface {
	// FindByUuid 根据 UUID 查找点评（不过滤状态）
	FindByUuid(uuid string) (*model.Review, error)
	// ListPublished 分页查询已发布点评
	ListPublished(filter ReviewFilter) ([]model.Review, int64, error)
	// Create 创建点评
	Create(review *model.Review) error
	// UpdateStatus 更新点评状态
	UpdateStatus(uuid string, status model.ContentStatus) error
	// UpdateModeration 回写举报计数，hide 为 true 时同时置为 hidden
	UpdateModeration(uuid string, reportsCount int, hide bool) error
	// FindPublishedForStats 查询目标下已发布点评的评分与分类（用于统计）
	FindPublishedForStats(targetUuid string) ([]model.Review, error)
	// AggregateByTargets 按目标聚合已发布点评数量与平均分
	AggregateByTargets() ([]TargetReviewAgg, error)
}

// CommentRepository 评论数据访问接口
type CommentRepository interface {
	// FindByUuid 根据 UUID 查找评论（不过滤状态）
	FindByUuid(uuid string) (*model.Comment, error)
	// ListPublishedByReview 分页查询点评下已发布评论
	ListPublishedByReview(reviewUuid string, page, pageSize int) ([]model.Comment, int64, error)
	// Create 创建评论
	Create(comment *model.Comment) error
	// UpdateStatus 更新评论状态
	UpdateStatus(uuid string, status model.ContentStatus) error
	// UpdateModeration 回写举报计数，hide 为 true 时同时置为 hidden
	UpdateModeration(uuid string, reportsCount int, hide bool) error
}

// LikeStatsRow 点赞分组统计
type LikeStatsRow struct {
	Total          int64
	UserCount      int64
	AnonymousCount int64
}

// LikeRepository 点赞数据访问接口
type LikeRepository interface {
	// FindByTargetAndActor 查找某行为人对某目标的存活点赞
	FindByTargetAndActor(targetType model.ReportTargetType, targetUuid, actorKey string) (*model.LikeRecord, error)
	// CreateAndIncrement 事务内创建点赞记录并为目标的 likes_count +1
	// 唯一索引冲突时返回可被 errors.Is(gorm.ErrDuplicatedKey) 识别的错误，事务整体回滚
	CreateAndIncrement(like *model.LikeRecord) error
	// StatsByTarget 统计目标的点赞总数及用户/匿名分布
	StatsByTarget(targetType model.ReportTargetType, targetUuid string) (*LikeStatsRow, error)
	// ListRecentByTarget 查询目标最近的点赞记录
	ListRecentByTarget(targetType model.ReportTargetType, targetUuid string, limit int) ([]model.LikeRecord, error)
	// FindLikedTargets 在给定目标集合中筛出某行为人已点赞的目标
	FindLikedTargets(targetType model.ReportTargetType, targetUuids []string, actorKey string) (map[string]bool, error)
}

// ReportRepository 举报数据访问接口
type ReportRepository interface {
	// FindByUuid 根据 UUID 查找举报单
	FindByUuid(uuid string) (*model.Report, error)
	// Create 创建举报单
	Create(report *model.Report) error
	// CountOpenByTarget 统计目标当前 open 状态的举报数（权威口径）
	CountOpenByTarget(targetType model.ReportTargetType, targetUuid string) (int64, error)
	// List 分页查询举报单，status 为空时不过滤
	List(status model.ReportStatus, page, pageSize int) ([]model.Report, int64, error)
	// UpdateStatus 更新举报单状态
	UpdateStatus(uuid string, status model.ReportStatus) error
}

// RateLimitRepository 限流计数器数据访问接口
type RateLimitRepository interface {
	// Get 查询计数器
	Get(action string, scope model.ActorScope, actorKey, windowDate string) (*model.RateLimitCounter, error)
	// TryConsume 原子地尝试消费配额
	// 成功自增返回 (true, 新计数)；会超出上限时不修改任何状态返回 (false, 当前计数)
	TryConsume(action string, scope model.ActorScope, actorKey, windowDate string, amount, cap int) (bool, int, error)
}
