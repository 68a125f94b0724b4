package respond

// ToggleLikeRespond 点赞操作响应
// is_new 为 false 表示此前已点赞，本次未消费限流配额
type ToggleLikeRespond struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
	IsNew      bool `json:"is_new"`
}

// LikeStatsRespond 目标点赞统计响应
type LikeStatsRespond struct {
	Total          int64 `json:"total"`
	UserCount      int64 `json:"user_count"`
	AnonymousCount int64 `json:"anonymous_count"`
}

// LikedSetRespond 已点赞目标集合响应
type LikedSetRespond struct {
	LikedIds []string `json:"liked_ids"`
}

// LikeItemRespond 单条点赞记录（含作者统一视图）
type LikeItemRespond struct {
	Author    AuthorRespond `json:"author"`
	CreatedAt string        `json:"created_at"`
}

// RecentLikesRespond 目标最近点赞列表响应
type RecentLikesRespond struct {
	Likes []LikeItemRespond `json:"likes"`
}

// QuotaRespond 剩余配额查询响应
// remaining 为 -1 表示该动作对当前行为人不限流
type QuotaRespond struct {
	Action    string `json:"action"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"reset_at"`
}
