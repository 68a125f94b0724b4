package respond

// CommentRespond 评论详情响应
type CommentRespond struct {
	Id           string        `json:"id"`
	ReviewId     string        `json:"review_id"`
	Content      string        `json:"content"`
	Language     string        `json:"language"`
	Status       string        `json:"status"`
	LikesCount   int           `json:"likes_count"`
	ReportsCount int           `json:"reports_count"`
	CreatedAt    string        `json:"created_at"`
	Author       AuthorRespond `json:"author"`
	IsLikedByMe  bool          `json:"is_liked_by_me"`
}

// CommentListRespond 评论列表响应
type CommentListRespond struct {
	Comments []CommentRespond `json:"comments"`
	Total    int64            `json:"total"`
}

// CreateCommentRespond 创建评论响应
type CreateCommentRespond struct {
	Id        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
