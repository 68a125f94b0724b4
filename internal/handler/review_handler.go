// Package handler 本文件处理点评相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/review"
)

// ReviewHandler 点评请求处理器
type ReviewHandler struct {
	reviewSvc   *review.Service
	identitySvc *identity.Service
}

// NewReviewHandler 创建点评处理器
func NewReviewHandler(reviewSvc *review.Service, identitySvc *identity.Service) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, identitySvc: identitySvc}
}

// Create 创建点评
// POST /reviews（匿名可用，需携带设备指纹；登录用户凭会话）
func (h *ReviewHandler) Create(c *gin.Context) {
	var req request.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveWriteActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	rsp, err := h.reviewSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// List 分页查询已发布点评
// GET /reviews
func (h *ReviewHandler) List(c *gin.Context) {
	var req request.ListReviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	// 读侧身份解析失败不阻断列表（只影响 is_liked_by_me）
	actor, err := resolveActor(c, h.identitySvc)
	if err != nil {
		actor = nil
	}

	rsp, err := h.reviewSvc.List(&req, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Get 查询单条已发布点评
// GET /reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	actor, err := resolveActor(c, h.identitySvc)
	if err != nil {
		actor = nil
	}

	rsp, err := h.reviewSvc.GetById(c.Param("id"), actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Stats 目标维度的点评统计
// GET /targets/:id/review_stats
func (h *ReviewHandler) Stats(c *gin.Context) {
	rsp, err := h.reviewSvc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
