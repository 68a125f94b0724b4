package respond

// TargetBriefRespond 点评中内嵌的目标摘要
type TargetBriefRespond struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// ReviewRespond 点评详情响应
// 使用位置:
//   - internal/service/review/service.go: List, GetById
type ReviewRespond struct {
	Id           string              `json:"id"`
	TargetId     string              `json:"target_id"`
	Category     string              `json:"category"`
	Content      string              `json:"content"`
	Rating       int                 `json:"rating"`
	Language     string              `json:"language"`
	Status       string              `json:"status"`
	LikesCount   int                 `json:"likes_count"`
	ReportsCount int                 `json:"reports_count"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
	Author       AuthorRespond       `json:"author"`
	Target       *TargetBriefRespond `json:"target,omitempty"`
	IsLikedByMe  bool                `json:"is_liked_by_me"`
}

// ReviewListRespond 点评列表响应
type ReviewListRespond struct {
	Reviews []ReviewRespond `json:"reviews"`
	Total   int64           `json:"total"`
}

// CreateReviewRespond 创建点评响应
// status 为 pending 时内容进入待审核队列，不出现在公开列表
type CreateReviewRespond struct {
	Id        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ReviewStatsRespond 目标维度的点评统计响应
type ReviewStatsRespond struct {
	Total              int64            `json:"total"`
	AvgRating          float64          `json:"avg_rating"`
	RatingDistribution map[int]int64    `json:"rating_distribution"`
	CategoryStats      map[string]int64 `json:"category_stats"`
}
