// Package like 点赞服务（参与度账本）
// 语义是"确保已赞"而非真正的开关：重复点赞幂等返回当前状态，不提供取消。
// (target_type, target_uuid, actor_key) 唯一索引保证并发首赞只留一条记录
package like

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dao/redis"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/author"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
)

// ToggleResult 点赞操作结果
type ToggleResult struct {
	Liked      bool // 恒为 true（本设计不支持取消点赞）
	LikesCount int  // 目标当前点赞数
	IsNew      bool // 本次是否新建了点赞记录
}

// Stats 目标点赞统计
type Stats struct {
	Total          int64 // 总点赞数
	UserCount      int64 // 注册用户点赞数
	AnonymousCount int64 // 匿名用户点赞数
}

// Service 点赞服务
type Service struct {
	likeRepo    mysql.LikeRepository
	reviewRepo  mysql.ReviewRepository
	commentRepo mysql.CommentRepository
	userRepo    mysql.UserRepository
	anonRepo    mysql.AnonymousUserRepository
	limiter     *ratelimit.Service
	publisher   eventbus.Publisher
	cache       redis.AsyncCacheService
}

// NewService 创建点赞服务
func NewService(
	likeRepo mysql.LikeRepository,
	reviewRepo mysql.ReviewRepository,
	commentRepo mysql.CommentRepository,
	userRepo mysql.UserRepository,
	anonRepo mysql.AnonymousUserRepository,
	limiter *ratelimit.Service,
	publisher eventbus.Publisher,
	cache redis.AsyncCacheService,
) *Service {
	return &Service{
		likeRepo:    likeRepo,
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		anonRepo:    anonRepo,
		limiter:     limiter,
		publisher:   publisher,
		cache:       cache,
	}
}

// Toggle 确保行为人对目标的点赞存在
// 已点赞时直接返回当前状态（IsNew=false），不消费限流配额；
// 首赞时先过两道限流（行为人维度 + ip_segment 维度），再在事务内
// 创建记录并为目标 likes_count +1。并发首赞的落败方命中唯一索引冲突，
// 按"已点赞"处理，绝不向调用方暴露冲突错误
func (s *Service) Toggle(ctx context.Context, targetType model.ReportTargetType, targetUuid string, actor *identity.Actor) (*ToggleResult, error) {
	likesCount, err := s.liveTargetLikes(targetType, targetUuid)
	if err != nil {
		return nil, err
	}

	// 重复点赞短路：不触碰限流
	if _, err := s.likeRepo.FindByTargetAndActor(targetType, targetUuid, actor.ActorKey); err == nil {
		return &ToggleResult{Liked: true, LikesCount: likesCount, IsNew: false}, nil
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	// 两道限流都通过才放行
	actorLimit, err := s.limiter.CheckAndConsume(ratelimit.ActionLikeCreate, actor, 1)
	if err != nil {
		return nil, err
	}
	if !actorLimit.Allowed {
		s.publishDenied(ctx, targetType, targetUuid, actor)
		return nil, errorx.ErrRateLimited
	}
	segmentLimit, err := s.limiter.CheckIPSegmentLimit(ratelimit.ActionLikeCreate, actor)
	if err != nil {
		return nil, err
	}
	if !segmentLimit.Allowed {
		s.publishDenied(ctx, targetType, targetUuid, actor)
		return nil, errorx.ErrRateLimited
	}

	record := &model.LikeRecord{
		TargetType:    targetType,
		TargetUuid:    targetUuid,
		ActorKey:      actor.ActorKey,
		UserUuid:      actor.UserUuid,
		AnonymousUuid: actor.AnonymousUuid,
	}
	err = s.likeRepo.CreateAndIncrement(record)
	if err != nil {
		// 并发首赞竞态：另一个请求已创建，按已点赞返回
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			zap.L().Debug("并发点赞竞态，按已点赞处理",
				zap.String("targetUuid", targetUuid),
				zap.String("actorKey", actor.ActorKey))
			count, readErr := s.liveTargetLikes(targetType, targetUuid)
			if readErr != nil {
				return nil, readErr
			}
			return &ToggleResult{Liked: true, LikesCount: count, IsNew: false}, nil
		}
		return nil, err
	}

	// 计数以落库后的重读为准：限流往返期间其他并发点赞可能已提交
	likesCount, err = s.liveTargetLikes(targetType, targetUuid)
	if err != nil {
		return nil, err
	}

	// 异步失效目标的点赞统计缓存
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), statsCacheKey(targetType, targetUuid)); err != nil {
			zap.L().Warn("失效点赞统计缓存失败", zap.String("targetUuid", targetUuid), zap.Error(err))
		}
	})

	return &ToggleResult{Liked: true, LikesCount: likesCount, IsNew: true}, nil
}

// StatsByTarget 目标点赞统计：总数及注册用户/匿名用户分布，带缓存
func (s *Service) StatsByTarget(ctx context.Context, targetType model.ReportTargetType, targetUuid string) (*Stats, error) {
	if _, err := s.liveTargetLikes(targetType, targetUuid); err != nil {
		return nil, err
	}

	key := statsCacheKey(targetType, targetUuid)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	row, err := s.likeRepo.StatsByTarget(targetType, targetUuid)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Total:          row.Total,
		UserCount:      row.UserCount,
		AnonymousCount: row.AnonymousCount,
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("写入点赞统计缓存失败", zap.String("targetUuid", targetUuid), zap.Error(err))
		}
	}
	return stats, nil
}

// statsCacheKey 点赞统计缓存键
func statsCacheKey(targetType model.ReportTargetType, targetUuid string) string {
	return "like_stats:" + string(targetType) + ":" + targetUuid
}

// RecentByTarget 查询目标最近的点赞记录，作者解析为统一视图
func (s *Service) RecentByTarget(targetType model.ReportTargetType, targetUuid string, limit int) ([]respond.LikeItemRespond, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.liveTargetLikes(targetType, targetUuid); err != nil {
		return nil, err
	}
	likes, err := s.likeRepo.ListRecentByTarget(targetType, targetUuid, limit)
	if err != nil {
		return nil, err
	}

	refs := make([]author.Ref, 0, len(likes))
	for _, l := range likes {
		refs = append(refs, author.Ref{UserUuid: l.UserUuid, AnonymousUuid: l.AnonymousUuid})
	}
	authors, err := author.Resolve(s.userRepo, s.anonRepo, refs)
	if err != nil {
		return nil, err
	}

	items := make([]respond.LikeItemRespond, 0, len(likes))
	for _, l := range likes {
		items = append(items, respond.LikeItemRespond{
			Author:    authors[author.Key(l.UserUuid, l.AnonymousUuid)],
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items, nil
}

// LikedSet 在给定目标集合中筛出行为人已点赞的目标（读侧个性化）
// 裸匿名行为人也可查询，以 ip:<hash> 为键
func (s *Service) LikedSet(targetType model.ReportTargetType, targetUuids []string, actor *identity.Actor) (map[string]bool, error) {
	if len(targetUuids) == 0 {
		return map[string]bool{}, nil
	}
	return s.likeRepo.FindLikedTargets(targetType, targetUuids, actor.ActorKey)
}

// liveTargetLikes 校验目标存在且未删除，返回当前 likes_count
// 已删除目标与缺失目标同样返回 ERR_LIKE_TARGET_NOT_FOUND
func (s *Service) liveTargetLikes(targetType model.ReportTargetType, targetUuid string) (int, error) {
	notFound := errorx.NewIdent(errorx.CodeNotFound, errorx.IdentLikeTargetNotFound, "点赞目标不存在")

	switch targetType {
	case model.TargetReview:
		review, err := s.reviewRepo.FindByUuid(targetUuid)
		if err != nil {
			if errorx.IsNotFound(err) {
				return 0, notFound
			}
			return 0, err
		}
		if review.Status == model.ContentDeleted {
			return 0, notFound
		}
		return review.LikesCount, nil
	case model.TargetComment:
		comment, err := s.commentRepo.FindByUuid(targetUuid)
		if err != nil {
			if errorx.IsNotFound(err) {
				return 0, notFound
			}
			return 0, err
		}
		if comment.Status == model.ContentDeleted {
			return 0, notFound
		}
		return comment.LikesCount, nil
	default:
		return 0, errorx.ErrInvalidParam
	}
}

// publishDenied 限流拒绝事件（仅记录行为人键与 IP 哈希维度，不含原始 IP）
func (s *Service) publishDenied(ctx context.Context, targetType model.ReportTargetType, targetUuid string, actor *identity.Actor) {
	s.publisher.Publish(ctx, eventbus.AbuseEvent{
		Type:       eventbus.EventRateLimitDenied,
		TargetType: string(targetType),
		TargetUuid: targetUuid,
		ActorKey:   actor.ActorKey,
		Reason:     ratelimit.ActionLikeCreate,
		OccurredAt: time.Now(),
	})
}
