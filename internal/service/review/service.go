// Package review 点评服务
// 创建路径串起整条反滥用流水线：行为人解析（上游完成）-> 限流 -> 内容评估
// 决定初始状态 -> 落库。列表只出已发布内容，作者解析为统一视图
package review

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dao/redis"
	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/author"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/moderation"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/internal/service/target"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/random"
)

// 正文与评分边界
const (
	contentMinLen = 50
	contentMaxLen = 2000
	ratingMin     = 1
	ratingMax     = 5
)

// Service 点评服务
type Service struct {
	reviewRepo mysql.ReviewRepository
	targetRepo mysql.TargetRepository
	userRepo   mysql.UserRepository
	anonRepo   mysql.AnonymousUserRepository
	likeRepo   mysql.LikeRepository
	limiter    *ratelimit.Service
	publisher  eventbus.Publisher
	cache      redis.AsyncCacheService
}

// NewService 创建点评服务
func NewService(
	reviewRepo mysql.ReviewRepository,
	targetRepo mysql.TargetRepository,
	userRepo mysql.UserRepository,
	anonRepo mysql.AnonymousUserRepository,
	likeRepo mysql.LikeRepository,
	limiter *ratelimit.Service,
	publisher eventbus.Publisher,
	cache redis.AsyncCacheService,
) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		targetRepo: targetRepo,
		userRepo:   userRepo,
		anonRepo:   anonRepo,
		likeRepo:   likeRepo,
		limiter:    limiter,
		publisher:  publisher,
		cache:      cache,
	}
}

// Create 创建点评
// 校验 -> 目标存在性 -> 两道限流 -> 内容评估决定初始状态 -> 落库。
// 任一步失败立即中止，不留部分副作用
func (s *Service) Create(ctx context.Context, req *request.CreateReviewRequest, actor *identity.Actor) (*respond.CreateReviewRespond, error) {
	if req.Rating < ratingMin || req.Rating > ratingMax {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentReviewValidation, "评分必须在 1-5 之间")
	}
	contentLen := len([]rune(req.Content))
	if contentLen < contentMinLen || contentLen > contentMaxLen {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentReviewValidation, "正文长度必须在 50-2000 字符之间")
	}

	if _, err := s.targetRepo.FindByUuid(req.TargetId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentTargetNotFound, "点评目标不存在")
		}
		return nil, err
	}

	if err := s.consumeQuota(ctx, req.TargetId, actor); err != nil {
		return nil, err
	}

	// 内容评估决定初始状态：命中启发式进入待审核，否则直接发布
	assessment := moderation.Assess(req.Content)
	status := model.ContentPublished
	if assessment.Flagged {
		status = model.ContentPending
	}

	language := req.Language
	if language == "" {
		language = "zh"
	}

	review := &model.Review{
		Uuid:          "R" + random.GetNowAndLenRandomString(13),
		TargetUuid:    req.TargetId,
		UserUuid:      actor.UserUuid,
		AnonymousUuid: actor.AnonymousUuid,
		ActorKey:      actor.ActorKey,
		Category:      req.Category,
		Rating:        req.Rating,
		Content:       req.Content,
		Language:      language,
		Status:        status,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	if assessment.Flagged {
		zap.L().Info("内容被标记进入待审核",
			zap.String("reviewUuid", review.Uuid),
			zap.String("reason", assessment.Reason))
		s.publisher.Publish(ctx, eventbus.AbuseEvent{
			Type:       eventbus.EventContentFlagged,
			TargetType: string(model.TargetReview),
			TargetUuid: review.Uuid,
			ActorKey:   actor.ActorKey,
			Reason:     assessment.Reason,
			OccurredAt: time.Now(),
		})
	}

	// 异步失效目标的统计缓存与目标列表缓存（列表含点评数/平均分聚合）
	s.cache.SubmitTask(func() {
		patterns := []string{statsCacheKey(req.TargetId), target.ListCachePattern}
		if err := s.cache.DeleteByPatterns(context.Background(), patterns); err != nil {
			zap.L().Warn("失效点评统计缓存失败", zap.String("targetUuid", req.TargetId), zap.Error(err))
		}
	})

	return &respond.CreateReviewRespond{
		Id:        review.Uuid,
		Status:    string(review.Status),
		CreatedAt: review.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// consumeQuota 消费行为人维度与 ip_segment 维度的限流配额
func (s *Service) consumeQuota(ctx context.Context, targetUuid string, actor *identity.Actor) error {
	limit, err := s.limiter.CheckAndConsume(ratelimit.ActionReviewCreate, actor, 1)
	if err != nil {
		return err
	}
	if limit.Allowed {
		var segment *ratelimit.Result
		segment, err = s.limiter.CheckIPSegmentLimit(ratelimit.ActionReviewCreate, actor)
		if err != nil {
			return err
		}
		if segment.Allowed {
			return nil
		}
	}

	s.publisher.Publish(ctx, eventbus.AbuseEvent{
		Type:       eventbus.EventRateLimitDenied,
		TargetType: string(model.TargetReview),
		TargetUuid: targetUuid,
		ActorKey:   actor.ActorKey,
		Reason:     ratelimit.ActionReviewCreate,
		OccurredAt: time.Now(),
	})
	return errorx.ErrRateLimited
}

// List 分页查询已发布点评
// actor 可为 nil（未解析身份时不计算 is_liked_by_me）
func (s *Service) List(req *request.ListReviewRequest, actor *identity.Actor) (*respond.ReviewListRespond, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	sort := req.Sort
	if sort == "" {
		sort = "latest"
	}

	reviews, total, err := s.reviewRepo.ListPublished(mysql.ReviewFilter{
		TargetUuid: req.TargetId,
		Category:   req.Category,
		Language:   req.Language,
		Sort:       sort,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.decorate(reviews, actor)
	if err != nil {
		return nil, err
	}
	return &respond.ReviewListRespond{Reviews: items, Total: total}, nil
}

// GetById 查询单条已发布点评
func (s *Service) GetById(uuid string, actor *identity.Actor) (*respond.ReviewRespond, error) {
	review, err := s.reviewRepo.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReviewNotFound, "点评不存在")
		}
		return nil, err
	}
	// 非已发布内容对外等同于不存在
	if review.Status != model.ContentPublished {
		return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReviewNotFound, "点评不存在")
	}

	items, err := s.decorate([]model.Review{*review}, actor)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Stats 目标维度的点评统计（已发布口径），带缓存
func (s *Service) Stats(ctx context.Context, targetUuid string) (*respond.ReviewStatsRespond, error) {
	key := statsCacheKey(targetUuid)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var stats respond.ReviewStatsRespond
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	reviews, err := s.reviewRepo.FindPublishedForStats(targetUuid)
	if err != nil {
		return nil, err
	}

	stats := &respond.ReviewStatsRespond{
		Total:              int64(len(reviews)),
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		CategoryStats:      map[string]int64{},
	}
	var ratingSum int64
	for _, r := range reviews {
		ratingSum += int64(r.Rating)
		stats.RatingDistribution[r.Rating]++
		if r.Category != "" {
			stats.CategoryStats[r.Category]++
		}
	}
	if stats.Total > 0 {
		stats.AvgRating = float64(ratingSum) / float64(stats.Total)
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("写入点评统计缓存失败", zap.String("targetUuid", targetUuid), zap.Error(err))
		}
	}
	return stats, nil
}

// decorate 批量解析作者并填充 is_liked_by_me
func (s *Service) decorate(reviews []model.Review, actor *identity.Actor) ([]respond.ReviewRespond, error) {
	refs := make([]author.Ref, 0, len(reviews))
	for _, r := range reviews {
		refs = append(refs, author.Ref{UserUuid: r.UserUuid, AnonymousUuid: r.AnonymousUuid})
	}
	authors, err := author.Resolve(s.userRepo, s.anonRepo, refs)
	if err != nil {
		return nil, err
	}

	liked := map[string]bool{}
	if actor != nil && len(reviews) > 0 {
		uuids := make([]string, 0, len(reviews))
		for _, r := range reviews {
			uuids = append(uuids, r.Uuid)
		}
		liked, err = s.likeRepo.FindLikedTargets(model.TargetReview, uuids, actor.ActorKey)
		if err != nil {
			return nil, err
		}
	}

	items := make([]respond.ReviewRespond, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, respond.ReviewRespond{
			Id:           r.Uuid,
			TargetId:     r.TargetUuid,
			Category:     r.Category,
			Content:      r.Content,
			Rating:       r.Rating,
			Language:     r.Language,
			Status:       string(r.Status),
			LikesCount:   r.LikesCount,
			ReportsCount: r.ReportsCount,
			CreatedAt:    r.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt:    r.UpdatedAt.Format("2006-01-02 15:04:05"),
			Author:       authors[author.Key(r.UserUuid, r.AnonymousUuid)],
			IsLikedByMe:  liked[r.Uuid],
		})
	}
	return items, nil
}

// statsCacheKey 统计缓存键
func statsCacheKey(targetUuid string) string {
	return "review_stats_" + targetUuid
}
