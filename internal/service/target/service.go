// Package target 点评目标（AI 编程工具）服务
package target

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dao/redis"
	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/model"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/random"
)

// 目标列表缓存键：按工具类型各存一份，失效时按前缀整组清除
const listCacheKeyPrefix = "target_list:"

// ListCachePattern 目标列表缓存的失效模式
// 点评的创建/隐藏会改变列表里的聚合数据，相关写路径也用它做失效
const ListCachePattern = listCacheKeyPrefix + "*"

// Service 目标服务
type Service struct {
	targetRepo mysql.TargetRepository
	reviewRepo mysql.ReviewRepository
	cache      redis.AsyncCacheService
}

// NewService 创建目标服务
func NewService(targetRepo mysql.TargetRepository, reviewRepo mysql.ReviewRepository, cache redis.AsyncCacheService) *Service {
	return &Service{
		targetRepo: targetRepo,
		reviewRepo: reviewRepo,
		cache:      cache,
	}
}

// Create 创建目标（管理端）
func (s *Service) Create(req *request.CreateTargetRequest) (*respond.TargetRespond, error) {
	features := "[]"
	if len(req.Features) > 0 {
		raw, err := json.Marshal(req.Features)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "功能标签序列化失败")
		}
		features = string(raw)
	}

	target := &model.Target{
		Uuid:        "T" + random.GetNowAndLenRandomString(13),
		Name:        req.Name,
		Slug:        req.Slug,
		Type:        model.ToolType(req.Type),
		LogoUrl:     req.LogoUrl,
		Description: req.Description,
		WebsiteUrl:  req.WebsiteUrl,
		Developer:   req.Developer,
		Features:    features,
	}
	if err := s.targetRepo.Create(target); err != nil {
		return nil, err
	}

	// 异步失效所有类型维度的列表缓存
	s.cache.SubmitTask(func() {
		if err := s.cache.DeleteByPattern(context.Background(), ListCachePattern); err != nil {
			zap.L().Warn("失效目标列表缓存失败", zap.Error(err))
		}
	})

	item := toRespond(target)
	return &item, nil
}

// List 查询目标列表，附带已发布点评的聚合数据，带缓存
func (s *Service) List(ctx context.Context, toolType string) (*respond.TargetListRespond, error) {
	key := listCacheKey(toolType)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var list respond.TargetListRespond
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return &list, nil
		}
	}

	targets, err := s.targetRepo.FindAll(model.ToolType(toolType))
	if err != nil {
		return nil, err
	}

	aggs, err := s.reviewRepo.AggregateByTargets()
	if err != nil {
		return nil, err
	}
	aggByTarget := make(map[string]mysql.TargetReviewAgg, len(aggs))
	for _, agg := range aggs {
		aggByTarget[agg.TargetUuid] = agg
	}

	items := make([]respond.TargetRespond, 0, len(targets))
	for i := range targets {
		item := toRespond(&targets[i])
		if agg, ok := aggByTarget[targets[i].Uuid]; ok {
			item.ReviewCount = agg.Total
			item.AvgRating = agg.AvgRating
		}
		items = append(items, item)
	}

	list := &respond.TargetListRespond{Targets: items}
	if raw, err := json.Marshal(list); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("写入目标列表缓存失败", zap.String("toolType", toolType), zap.Error(err))
		}
	}
	return list, nil
}

// listCacheKey 目标列表缓存键，空类型归入 "all"
func listCacheKey(toolType string) string {
	if toolType == "" {
		return listCacheKeyPrefix + "all"
	}
	return listCacheKeyPrefix + toolType
}

// GetBySlug 按类型和短标识查询目标
func (s *Service) GetBySlug(toolType, slug string) (*respond.TargetRespond, error) {
	target, err := s.targetRepo.FindBySlug(model.ToolType(toolType), slug)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentTargetNotFound, "目标不存在")
		}
		return nil, err
	}
	item := toRespond(target)
	return &item, nil
}

// GetByUuid 按 id 查询目标
func (s *Service) GetByUuid(uuid string) (*respond.TargetRespond, error) {
	target, err := s.targetRepo.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentTargetNotFound, "目标不存在")
		}
		return nil, err
	}
	item := toRespond(target)
	return &item, nil
}

// toRespond 模型转响应视图
func toRespond(target *model.Target) respond.TargetRespond {
	var features []string
	if target.Features != "" {
		if err := json.Unmarshal([]byte(target.Features), &features); err != nil {
			zap.L().Warn("解析功能标签失败", zap.String("targetUuid", target.Uuid), zap.Error(err))
		}
	}
	return respond.TargetRespond{
		Id:          target.Uuid,
		Name:        target.Name,
		Slug:        target.Slug,
		Type:        string(target.Type),
		LogoUrl:     target.LogoUrl,
		Description: target.Description,
		WebsiteUrl:  target.WebsiteUrl,
		Developer:   target.Developer,
		Features:    features,
	}
}
