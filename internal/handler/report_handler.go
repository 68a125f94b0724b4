// Package handler 本文件处理举报与审核相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/moderation"
)

// ReportHandler 举报与审核请求处理器
type ReportHandler struct {
	moderationSvc *moderation.Service
	identitySvc   *identity.Service
}

// NewReportHandler 创建举报处理器
func NewReportHandler(moderationSvc *moderation.Service, identitySvc *identity.Service) *ReportHandler {
	return &ReportHandler{moderationSvc: moderationSvc, identitySvc: identitySvc}
}

// Create 创建举报
// POST /reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req request.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveWriteActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	report, err := h.moderationSvc.CreateReport(c.Request.Context(),
		model.ReportTargetType(req.TargetType), req.TargetId, req.Reason, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toReportRespond(report))
}

// List 举报单列表（管理端）
// GET /admin/reports
func (h *ReportHandler) List(c *gin.Context) {
	var req request.ListReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	reports, total, err := h.moderationSvc.ListReports(model.ReportStatus(req.Status), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]respond.ReportRespond, 0, len(reports))
	for i := range reports {
		items = append(items, toReportRespond(&reports[i]))
	}
	HandleSuccess(c, respond.ReportListRespond{Reports: items, Total: total})
}

// Resolve 审核员处理举报单（管理端）
// POST /admin/reports/resolve
func (h *ReportHandler) Resolve(c *gin.Context) {
	var req request.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	report, err := h.moderationSvc.ResolveReport(c.Request.Context(), req.ReportId, req.Action == "resolve")
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toReportRespond(report))
}

// UpdateContentStatus 审核员变更内容状态（管理端）
// POST /admin/content/status
func (h *ReportHandler) UpdateContentStatus(c *gin.Context) {
	var req request.UpdateContentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	err := h.moderationSvc.UpdateContentStatus(
		model.ReportTargetType(req.TargetType), req.TargetId, model.ContentStatus(req.Status))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// toReportRespond 模型转响应视图
func toReportRespond(report *model.Report) respond.ReportRespond {
	return respond.ReportRespond{
		Id:         report.Uuid,
		TargetType: string(report.TargetType),
		TargetId:   report.TargetUuid,
		Reason:     report.Reason,
		Status:     string(report.Status),
		CreatedAt:  report.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
