package request

// CreateReviewRequest 创建点评请求
// 正文长度与评分范围由 Service 层校验（与限流/内容评估同层，便于返回稳定错误标识）
// 使用位置:
//   - internal/handler/review_handler.go: CreateReview
//   - internal/service/review/service.go: Create
type CreateReviewRequest struct {
	TargetId string `json:"target_id" binding:"required"`
	Category string `json:"category" binding:"required,max=20"`
	Rating   int    `json:"rating" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Language string `json:"language" binding:"omitempty,max=5"`
}

// ListReviewRequest 点评列表查询请求
// 使用位置:
//   - internal/handler/review_handler.go: ListReviews
type ListReviewRequest struct {
	TargetId string `form:"target_id"`
	Category string `form:"category"`
	Language string `form:"language"`
	Sort     string `form:"sort" binding:"omitempty,oneof=latest hot"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
