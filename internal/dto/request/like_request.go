package request

// ToggleLikeRequest 点赞请求
// 使用位置:
//   - internal/handler/like_handler.go: ToggleLike
type ToggleLikeRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=review comment"`
	TargetId   string `json:"target_id" binding:"required"`
}

// LikedSetRequest 查询行为人在目标集合中的已点赞子集
type LikedSetRequest struct {
	TargetType string   `json:"target_type" binding:"required,oneof=review comment"`
	TargetIds  []string `json:"target_ids" binding:"required,max=100"`
}
