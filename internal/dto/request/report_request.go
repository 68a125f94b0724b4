package request

// CreateReportRequest 创建举报请求
// reason 的最小长度在 Service 层按去除首尾空白后校验
// 使用位置:
//   - internal/handler/report_handler.go: CreateReport
//   - internal/service/moderation/service.go: CreateReport
type CreateReportRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=review comment"`
	TargetId   string `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required,max=500"`
}

// ResolveReportRequest 审核员处理举报请求
type ResolveReportRequest struct {
	ReportId string `json:"report_id" binding:"required"`
	Action   string `json:"action" binding:"required,oneof=resolve reject"`
}

// ListReportRequest 举报单列表查询请求
type ListReportRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=open resolved rejected"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateContentStatusRequest 审核员变更内容状态请求
type UpdateContentStatusRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=review comment"`
	TargetId   string `json:"target_id" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=published hidden deleted"`
}
