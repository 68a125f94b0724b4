package request

// CreateCommentRequest 创建评论请求
// 使用位置:
//   - internal/handler/comment_handler.go: CreateComment
//   - internal/service/comment/service.go: Create
type CreateCommentRequest struct {
	ReviewId string `json:"review_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Language string `json:"language" binding:"omitempty,max=5"`
}

// ListCommentRequest 评论列表查询请求
type ListCommentRequest struct {
	ReviewId string `form:"review_id" binding:"required"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
