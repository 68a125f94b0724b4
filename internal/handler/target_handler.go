// Package handler 本文件处理点评目标相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/service/target"
)

// TargetHandler 点评目标请求处理器
type TargetHandler struct {
	targetSvc *target.Service
}

// NewTargetHandler 创建目标处理器
func NewTargetHandler(targetSvc *target.Service) *TargetHandler {
	return &TargetHandler{targetSvc: targetSvc}
}

// Create 创建目标（管理端）
// POST /admin/targets
func (h *TargetHandler) Create(c *gin.Context) {
	var req request.CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.targetSvc.Create(&req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// List 目标列表（含已发布点评聚合）
// GET /targets
func (h *TargetHandler) List(c *gin.Context) {
	var req request.ListTargetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.targetSvc.List(c.Request.Context(), req.Type)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Get 按 id 查询目标
// GET /targets/:id
func (h *TargetHandler) Get(c *gin.Context) {
	rsp, err := h.targetSvc.GetByUuid(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetBySlug 按类型与短标识查询目标
// GET /tools/:type/:slug
func (h *TargetHandler) GetBySlug(c *gin.Context) {
	rsp, err := h.targetSvc.GetBySlug(c.Param("type"), c.Param("slug"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
