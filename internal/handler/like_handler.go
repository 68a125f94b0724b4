// Package handler 本文件处理点赞相关的 API 请求
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/like"
	"tool_review_server/internal/service/ratelimit"
)

// LikeHandler 点赞请求处理器
type LikeHandler struct {
	likeSvc     *like.Service
	limiterSvc  *ratelimit.Service
	identitySvc *identity.Service
}

// NewLikeHandler 创建点赞处理器
func NewLikeHandler(likeSvc *like.Service, limiterSvc *ratelimit.Service, identitySvc *identity.Service) *LikeHandler {
	return &LikeHandler{likeSvc: likeSvc, limiterSvc: limiterSvc, identitySvc: identitySvc}
}

// Toggle 点赞（幂等的"确保已赞"）
// POST /likes
func (h *LikeHandler) Toggle(c *gin.Context) {
	var req request.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveWriteActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.likeSvc.Toggle(c.Request.Context(), model.ReportTargetType(req.TargetType), req.TargetId, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ToggleLikeRespond{
		Liked:      result.Liked,
		LikesCount: result.LikesCount,
		IsNew:      result.IsNew,
	})
}

// Stats 目标点赞统计
// GET /likes/stats?target_type=review&target_id=R...
func (h *LikeHandler) Stats(c *gin.Context) {
	targetType := c.Query("target_type")
	targetId := c.Query("target_id")
	if (targetType != string(model.TargetReview) && targetType != string(model.TargetComment)) || targetId == "" {
		HandleParamError(c, nil)
		return
	}

	stats, err := h.likeSvc.StatsByTarget(c.Request.Context(), model.ReportTargetType(targetType), targetId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.LikeStatsRespond{
		Total:          stats.Total,
		UserCount:      stats.UserCount,
		AnonymousCount: stats.AnonymousCount,
	})
}

// Recent 目标最近的点赞列表
// GET /likes/recent?target_type=review&target_id=R...&limit=20
func (h *LikeHandler) Recent(c *gin.Context) {
	targetType := c.Query("target_type")
	targetId := c.Query("target_id")
	if (targetType != string(model.TargetReview) && targetType != string(model.TargetComment)) || targetId == "" {
		HandleParamError(c, nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	likes, err := h.likeSvc.RecentByTarget(model.ReportTargetType(targetType), targetId, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RecentLikesRespond{Likes: likes})
}

// LikedSet 查询行为人在目标集合中已点赞的子集
// POST /likes/liked_set
func (h *LikeHandler) LikedSet(c *gin.Context) {
	var req request.LikedSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	liked, err := h.likeSvc.LikedSet(model.ReportTargetType(req.TargetType), req.TargetIds, actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	likedIds := make([]string, 0, len(liked))
	for _, id := range req.TargetIds {
		if liked[id] {
			likedIds = append(likedIds, id)
		}
	}
	HandleSuccess(c, respond.LikedSetRespond{LikedIds: likedIds})
}

// Quota 查询剩余配额（只读，不消费）
// GET /quota?action=like_create
func (h *LikeHandler) Quota(c *gin.Context) {
	action := c.Query("action")
	switch action {
	case ratelimit.ActionReviewCreate, ratelimit.ActionCommentCreate,
		ratelimit.ActionLikeCreate, ratelimit.ActionReportCreate:
	default:
		HandleParamError(c, nil)
		return
	}

	actor, err := resolveActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.limiterSvc.RemainingQuota(action, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.QuotaRespond{
		Action:    action,
		Remaining: result.Remaining,
		ResetAt:   result.ResetAt.Format("2006-01-02 15:04:05"),
	})
}
