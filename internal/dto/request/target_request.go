package request

// CreateTargetRequest 创建点评目标（管理端）请求
// 使用位置:
//   - internal/handler/target_handler.go: CreateTarget
type CreateTargetRequest struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Slug        string   `json:"slug" binding:"required,max=50"`
	Type        string   `json:"type" binding:"required,oneof=editor coding"`
	LogoUrl     string   `json:"logo_url" binding:"omitempty,max=255"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	WebsiteUrl  string   `json:"website_url" binding:"omitempty,max=255"`
	Developer   string   `json:"developer" binding:"omitempty,max=50"`
	Features    []string `json:"features" binding:"omitempty,max=20"`
}

// ListTargetRequest 目标列表查询请求
type ListTargetRequest struct {
	Type string `form:"type" binding:"omitempty,oneof=editor coding"`
}
